// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package core holds the types shared across warden's RBAC, ABAC, policy,
// cache and temporary-permission packages. It has no dependency on any of
// them, mirroring the leaves-first layering of the decision pipeline.
package core

import "time"

// Wildcard is the literal value that matches any concrete resource or
// action in a permission grant.
const Wildcard = "*"

// PermissionGrant is a (resource, action) pair. Either field may be the
// literal Wildcard to match any concrete value in that position.
type PermissionGrant struct {
	Resource string `validate:"required"`
	Action   string `validate:"required"`
}

// Matches reports whether the grant covers the given request, applying
// wildcard semantics in either position independently.
func (g PermissionGrant) Matches(resource, action string) bool {
	return (g.Resource == Wildcard || g.Resource == resource) &&
		(g.Action == Wildcard || g.Action == action)
}

// String renders the grant in its canonical "resource:action" form.
func (g PermissionGrant) String() string {
	return g.Resource + ":" + g.Action
}

// Decision is the outcome of a single authorization check. It is always
// returned, never replaced by an error: Check has no error result.
type Decision struct {
	Allowed      bool          `json:"allowed"`
	Duration     time.Duration `json:"duration"`
	MatchedRole  string        `json:"matchedRole,omitempty"`
	MatchedGrant string        `json:"matchedGrant,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	CacheHit     bool          `json:"cacheHit,omitempty"`
	Source       string        `json:"source,omitempty"`
}

// PolicyEffectType is the effect of a policy rule or role-entitlement style
// mapping: allow or deny.
type PolicyEffectType string

const (
	EffectAllow PolicyEffectType = "allow"
	EffectDeny  PolicyEffectType = "deny"
)

// ConflictResolution names a strategy for resolving multiple matched policy
// rules down to a single effect.
type ConflictResolution string

const (
	DenyOverride      ConflictResolution = "deny-override"
	AllowOverride     ConflictResolution = "allow-override"
	FirstApplicable   ConflictResolution = "first-applicable"
	OnlyOneApplicable ConflictResolution = "only-one-applicable"
)
