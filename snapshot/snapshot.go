// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot defines the engine's full-replace import/export wire
// format: a single self-describing object covering the rbac, abac and
// policy stores. The object's shape is a plain Go struct tree; a JSON
// Schema is generated from it so an import can be validated before being
// applied, rather than failing partway through.
package snapshot

import (
	"time"

	"github.com/wardenhq/warden/condition"
	"github.com/wardenhq/warden/core"
)

// Version is the current snapshot format version, stamped into every
// export. Import does not check it; callers decide compatibility.
const Version = "1"

// GrantSnapshot mirrors core.PermissionGrant for the wire format.
type GrantSnapshot struct {
	Resource string `json:"resource" jsonschema:"required"`
	Action   string `json:"action" jsonschema:"required"`
}

// RoleSnapshot captures one role's shape: name, display metadata,
// inheritance edges and directly-held grants.
type RoleSnapshot struct {
	Name        string          `json:"name" jsonschema:"required"`
	DisplayName string          `json:"displayName,omitempty"`
	Description string          `json:"description,omitempty"`
	Parents     []string        `json:"parents,omitempty"`
	Grants      []GrantSnapshot `json:"grants,omitempty"`
}

// AssignmentSnapshot captures one user's direct role assignments.
type AssignmentSnapshot struct {
	User  string   `json:"user" jsonschema:"required"`
	Roles []string `json:"roles" jsonschema:"required"`
}

// RBACSnapshot is the full role graph plus user assignments.
type RBACSnapshot struct {
	MaxDepth    int                  `json:"maxDepth"`
	Roles       []RoleSnapshot       `json:"roles"`
	Assignments []AssignmentSnapshot `json:"assignments"`
}

// ABACRuleSnapshot mirrors abac.Rule for the wire format.
type ABACRuleSnapshot struct {
	ID         string          `json:"id" jsonschema:"required"`
	Name       string          `json:"name,omitempty"`
	Priority   int             `json:"priority"`
	Subjects   []string        `json:"subjects,omitempty"`
	Actions    []string        `json:"actions,omitempty"`
	Conditions *condition.Node `json:"conditions,omitempty"`
	Inverted   bool            `json:"inverted,omitempty"`
	Enabled    bool            `json:"enabled"`
}

// ABACSnapshot is the full ABAC rule set.
type ABACSnapshot struct {
	Strict bool               `json:"strict"`
	Rules  []ABACRuleSnapshot `json:"rules"`
}

// PolicyRuleSnapshot mirrors policy.Rule for the wire format.
type PolicyRuleSnapshot struct {
	ID         string                `json:"id" jsonschema:"required"`
	Effect     core.PolicyEffectType `json:"effect" jsonschema:"required"`
	Priority   int                   `json:"priority"`
	Subjects   []string              `json:"subjects,omitempty"`
	Resources  []string              `json:"resources,omitempty"`
	Actions    []string              `json:"actions,omitempty"`
	Conditions *condition.Node       `json:"conditions,omitempty"`
	Enabled    bool                  `json:"enabled"`
}

// PolicySnapshot mirrors policy.Policy for the wire format.
type PolicySnapshot struct {
	ID         string                     `json:"id" jsonschema:"required"`
	Name       string                     `json:"name" jsonschema:"required"`
	Enabled    bool                       `json:"enabled"`
	Resolution core.ConflictResolution    `json:"resolution"`
	Rules      []PolicyRuleSnapshot       `json:"rules"`
}

// PolicyEngineSnapshot is the full policy store.
type PolicyEngineSnapshot struct {
	DefaultResolution core.ConflictResolution `json:"defaultResolution"`
	Policies          []PolicySnapshot        `json:"policies"`
}

// Snapshot is the complete, opaque-to-callers export/import object.
type Snapshot struct {
	Version    string               `json:"version" jsonschema:"required"`
	ExportedAt time.Time            `json:"exportedAt" jsonschema:"required"`
	RBAC       RBACSnapshot         `json:"rbac"`
	ABAC       ABACSnapshot         `json:"abac"`
	Policy     PolicyEngineSnapshot `json:"policy"`
}
