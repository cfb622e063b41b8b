// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package rbac implements the role graph: role CRUD, inheritance closure,
// cycle detection and wildcard permission matching. The graph is modeled
// as an arena (roles keyed by name in a map, edges as child->parent
// adjacency lists) rather than pointer-linked nodes, so ancestry and
// descendants are always computed by BFS/DFS traversal — never by
// following owning pointers — per the design note against cyclic,
// pointer-rich structures.
package rbac

import (
	"time"

	"github.com/wardenhq/warden/core"
)

// DefaultMaxDepth bounds role-graph traversal depth when no override is
// configured.
const DefaultMaxDepth = 10

// Role is a named bundle of permission grants that may inherit from parent
// roles.
type Role struct {
	Name        string
	DisplayName string
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Grants      []core.PermissionGrant
	Parents     []string
}

// Options configures a new role at creation time.
type Options struct {
	DisplayName string
	Description string
	Metadata    map[string]any
	Parents     []string               `validate:"dive,required"`
	Grants      []core.PermissionGrant `validate:"dive"`
}

// Update describes a partial edit to an existing role. Nil fields are left
// unchanged; Parents is a pointer so "set to an empty list" is
// distinguishable from "leave parents alone".
type Update struct {
	DisplayName *string
	Description *string
	Metadata    map[string]any
	Parents     *[]string
}

func (r *Role) clone() *Role {
	cp := *r
	cp.Grants = append([]core.PermissionGrant(nil), r.Grants...)
	cp.Parents = append([]string(nil), r.Parents...)
	if r.Metadata != nil {
		cp.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
