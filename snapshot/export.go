// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"time"

	"github.com/wardenhq/warden/abac"
	"github.com/wardenhq/warden/policy"
	"github.com/wardenhq/warden/rbac"
)

// Export builds a full snapshot of the given stores.
func Export(graph *rbac.Graph, abacEngine *abac.Engine, policyEngine *policy.Engine, now func() time.Time) Snapshot {
	s := Snapshot{
		Version:    Version,
		ExportedAt: now(),
	}

	if graph != nil {
		s.RBAC.MaxDepth = graph.MaxDepth()
		for _, r := range graph.Roles() {
			grants := make([]GrantSnapshot, 0, len(r.Grants))
			for _, g := range r.Grants {
				grants = append(grants, GrantSnapshot{Resource: g.Resource, Action: g.Action})
			}
			s.RBAC.Roles = append(s.RBAC.Roles, RoleSnapshot{
				Name:        r.Name,
				DisplayName: r.DisplayName,
				Description: r.Description,
				Parents:     r.Parents,
				Grants:      grants,
			})
		}
		for user, roles := range graph.Assignments() {
			s.RBAC.Assignments = append(s.RBAC.Assignments, AssignmentSnapshot{User: user, Roles: roles})
		}
	}

	if abacEngine != nil {
		s.ABAC.Strict = abacEngine.Strict()
		for _, r := range abacEngine.Rules() {
			s.ABAC.Rules = append(s.ABAC.Rules, ABACRuleSnapshot{
				ID:         r.ID,
				Name:       r.Name,
				Priority:   r.Priority,
				Subjects:   r.Subjects,
				Actions:    r.Actions,
				Conditions: r.Conditions,
				Inverted:   r.Inverted,
				Enabled:    r.Enabled,
			})
		}
	}

	if policyEngine != nil {
		s.Policy.DefaultResolution = policyEngine.DefaultResolution()
		for _, p := range policyEngine.Policies() {
			rules := make([]PolicyRuleSnapshot, 0, len(p.Rules))
			for _, r := range p.Rules {
				rules = append(rules, PolicyRuleSnapshot{
					ID:         r.ID,
					Effect:     r.Effect,
					Priority:   r.Priority,
					Subjects:   r.Subjects,
					Resources:  r.Resources,
					Actions:    r.Actions,
					Conditions: r.Conditions,
					Enabled:    r.Enabled,
				})
			}
			s.Policy.Policies = append(s.Policy.Policies, PolicySnapshot{
				ID:         p.ID,
				Name:       p.Name,
				Enabled:    p.Enabled,
				Resolution: p.Resolution,
				Rules:      rules,
			})
		}
	}

	return s
}
