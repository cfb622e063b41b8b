// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/json"

	"github.com/samber/oops"

	"github.com/wardenhq/warden/abac"
	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/policy"
	"github.com/wardenhq/warden/rbac"
)

// Decode parses and schema-validates raw into a Snapshot. Callers should
// apply the result with Import before trusting it's been accepted.
func Decode(raw []byte) (Snapshot, error) {
	if err := Validate(raw); err != nil {
		return Snapshot{}, err
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, oops.Code(core.CodeInvalidConfig).Wrapf(err, "decode snapshot")
	}
	return s, nil
}

// Import replaces the full contents of graph, abacEngine and policyEngine
// with s's contents. This is a full replace, never a merge: every existing
// role, rule and policy is discarded first. A nil store is left untouched.
func Import(s Snapshot, graph *rbac.Graph, abacEngine *abac.Engine, policyEngine *policy.Engine) error {
	if graph != nil {
		roles := make([]*rbac.Role, 0, len(s.RBAC.Roles))
		for _, r := range s.RBAC.Roles {
			grants := make([]core.PermissionGrant, 0, len(r.Grants))
			for _, g := range r.Grants {
				grants = append(grants, core.PermissionGrant{Resource: g.Resource, Action: g.Action})
			}
			roles = append(roles, &rbac.Role{
				Name:        r.Name,
				DisplayName: r.DisplayName,
				Description: r.Description,
				Parents:     r.Parents,
				Grants:      grants,
			})
		}
		assignments := make(map[string][]string, len(s.RBAC.Assignments))
		for _, a := range s.RBAC.Assignments {
			assignments[a.User] = a.Roles
		}
		if err := graph.ReplaceAll(s.RBAC.MaxDepth, roles, assignments); err != nil {
			return oops.Code(core.CodeInvalidConfig).Wrapf(err, "import rbac snapshot")
		}
	}

	if abacEngine != nil {
		rules := make([]abac.Rule, 0, len(s.ABAC.Rules))
		for _, r := range s.ABAC.Rules {
			rules = append(rules, abac.Rule{
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
		if err := abacEngine.ReplaceAll(s.ABAC.Strict, rules); err != nil {
			return oops.Code(core.CodeInvalidConfig).Wrapf(err, "import abac snapshot")
		}
	}

	if policyEngine != nil {
		policies := make([]policy.Policy, 0, len(s.Policy.Policies))
		for _, p := range s.Policy.Policies {
			rules := make([]policy.Rule, 0, len(p.Rules))
			for _, r := range p.Rules {
				rules = append(rules, policy.Rule{
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
			policies = append(policies, policy.Policy{
				ID:         p.ID,
				Name:       p.Name,
				Enabled:    p.Enabled,
				Resolution: p.Resolution,
				Rules:      rules,
			})
		}
		if err := policyEngine.ReplaceAll(s.Policy.DefaultResolution, policies); err != nil {
			return oops.Code(core.CodeInvalidConfig).Wrapf(err, "import policy snapshot")
		}
	}

	return nil
}
