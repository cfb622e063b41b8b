// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package abac implements the attribute-based access control engine: a
// priority-ordered rule set matched on subject type and action patterns,
// gated by condition-tree evaluation against the decision context, plus
// field-level visibility/filtering for a (subject-type, action) pair.
package abac

import "github.com/wardenhq/warden/condition"

// Rule is a single ABAC entitlement or restriction. Subjects and Actions
// patterns may be literal values, the bare wildcard "*", or a
// gobwas/glob shell-style glob (e.g. "project:*:deploy") — an additive
// enrichment over RBAC's literal-or-"*" grants.
type Rule struct {
	ID         string `validate:"required"`
	Name       string
	Priority   int
	Subjects   []string `validate:"dive,required"`
	Actions    []string `validate:"dive,required"`
	Conditions *condition.Node
	Inverted   bool
	Enabled    bool

	insertSeq int
}

// FieldPermission declares which fields of a (subject-type, action) result
// are visible, optionally gated by a per-field condition.
type FieldPermission struct {
	SubjectType string
	Action      string
	Allowed     []string
	Denied      []string
	Conditions  map[string]*condition.Node
}
