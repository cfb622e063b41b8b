// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package warden

import (
	"time"

	"github.com/wardenhq/warden/abac"
	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/events"
	"github.com/wardenhq/warden/internal/reqvalidate"
	"github.com/wardenhq/warden/policy"
	"github.com/wardenhq/warden/rbac"
	"github.com/wardenhq/warden/temporary"
)

// invalidateForRole drops every cached decision for role and every user
// holding it, directly or by inheritance — the cache-invalidation set
// spec.md §4.1 describes as "role plus every descendant of role".
func (e *Engine) invalidateForRole(role string) {
	if e.dcache == nil {
		return
	}
	affected := append([]string{role}, e.roles.Descendants(role)...)
	for _, r := range affected {
		for _, user := range e.roles.UsersWithRole(r) {
			e.dcache.Invalidate(user + "|")
		}
	}
}

// CreateRole creates a new role in the role graph.
func (e *Engine) CreateRole(name string, opts rbac.Options) error {
	if err := reqvalidate.Struct(opts); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.roles.CreateRole(name, opts)
}

// UpdateRole applies a partial edit to an existing role.
func (e *Engine) UpdateRole(name string, u rbac.Update) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.roles.UpdateRole(name, u); err != nil {
		return err
	}
	e.invalidateForRole(name)
	return nil
}

// DeleteRole removes a role, its assignments and its inheritance edges.
func (e *Engine) DeleteRole(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invalidateForRole(name)
	return e.roles.DeleteRole(name)
}

// AssignRole grants role to user directly.
func (e *Engine) AssignRole(user, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.roles.AssignRole(user, role); err != nil {
		return err
	}
	if e.dcache != nil {
		e.dcache.Invalidate(user + "|")
	}
	e.emit(events.RoleAssigned, map[string]string{"user": user, "role": role})
	return nil
}

// UnassignRole revokes a direct role assignment.
func (e *Engine) UnassignRole(user, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.roles.UnassignRole(user, role); err != nil {
		return err
	}
	if e.dcache != nil {
		e.dcache.Invalidate(user + "|")
	}
	e.emit(events.RoleUnassigned, map[string]string{"user": user, "role": role})
	return nil
}

// GrantPermission adds a permission grant to role, optionally applying it
// to every descendant role as well.
func (e *Engine) GrantPermission(role string, grant core.PermissionGrant, recursive bool) error {
	if err := reqvalidate.Struct(grant); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.roles.Grant(role, grant, recursive); err != nil {
		return err
	}
	e.invalidateForRole(role)
	e.emit(events.PermissionGranted, map[string]any{"role": role, "grant": grant.String()})
	return nil
}

// RevokePermission removes a permission grant from role, optionally from
// every descendant role as well.
func (e *Engine) RevokePermission(role string, grant core.PermissionGrant, recursive bool) error {
	if err := reqvalidate.Struct(grant); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.roles.Revoke(role, grant, recursive); err != nil {
		return err
	}
	e.invalidateForRole(role)
	e.emit(events.PermissionRevoked, map[string]any{"role": role, "grant": grant.String()})
	return nil
}

// AddABACRule inserts an ABAC rule.
func (e *Engine) AddABACRule(r abac.Rule) (string, error) {
	if err := reqvalidate.Struct(r); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := e.abacEng.AddRule(r)
	if err != nil {
		return "", err
	}
	if e.dcache != nil {
		e.dcache.Clear()
	}
	return id, nil
}

// RemoveABACRule deletes an ABAC rule by id.
func (e *Engine) RemoveABACRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.abacEng.RemoveRule(id); err != nil {
		return err
	}
	if e.dcache != nil {
		e.dcache.Clear()
	}
	return nil
}

// DeclareFields registers a field-visibility declaration on the ABAC
// engine.
func (e *Engine) DeclareFields(fp abac.FieldPermission) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.abacEng.DeclareFields(fp)
}

// AccessibleFields returns the accessible field set for (subjectType,
// action) given ctx.
func (e *Engine) AccessibleFields(subjectType, action string, ctx map[string]any) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.abacEng.AccessibleFields(subjectType, action, ctx)
}

// FilterFields projects obj down to the accessible field set.
func (e *Engine) FilterFields(subjectType, action string, obj, ctx map[string]any) map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.abacEng.FilterFields(subjectType, action, obj, ctx)
}

// CreatePolicy stores a new policy.
func (e *Engine) CreatePolicy(p policy.Policy) (string, error) {
	if err := reqvalidate.Struct(p); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := e.policies.CreatePolicy(p)
	if err != nil {
		return "", err
	}
	if e.dcache != nil {
		e.dcache.Clear()
	}
	return id, nil
}

// DeletePolicy removes a policy by id.
func (e *Engine) DeletePolicy(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.policies.DeletePolicy(id); err != nil {
		return err
	}
	if e.dcache != nil {
		e.dcache.Clear()
	}
	return nil
}

// GrantTempPermission creates a time-bounded temporary permission for
// user, expiring at expiresAt.
func (e *Engine) GrantTempPermission(user, resource, action string, expiresAt time.Time, opts temporary.GrantOptions) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := e.temp.GrantTemp(user, resource, action, expiresAt, opts)
	if err != nil {
		return "", err
	}
	if e.dcache != nil {
		e.dcache.Invalidate(user + "|")
	}
	e.emit(events.PermissionTemporaryGrant, map[string]any{"id": id, "user": user, "resource": resource, "action": action})
	return id, nil
}

// GrantOncePermission creates a one-time permission for user, consumed on
// its first successful match.
func (e *Engine) GrantOncePermission(user, resource, action string, expiresAt time.Time, opts temporary.GrantOptions) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := e.temp.GrantOnce(user, resource, action, expiresAt, opts)
	if err != nil {
		return "", err
	}
	if e.dcache != nil {
		e.dcache.Invalidate(user + "|")
	}
	e.emit(events.PermissionOneTimeGrant, map[string]any{"id": id, "user": user, "resource": resource, "action": action})
	return id, nil
}

// RevokeTempPermission removes a temporary or one-time grant by id,
// regardless of its current state.
func (e *Engine) RevokeTempPermission(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.temp.Revoke(id); err != nil {
		return err
	}
	if e.dcache != nil {
		e.dcache.Clear()
	}
	e.emit(events.PermissionTemporaryRevoke, map[string]string{"id": id})
	return nil
}

// SweepExpiredTemporaryGrants removes every temporary grant whose
// expiration instant has passed, intended to be driven by a host-owned
// timer per spec §5 ("periodic cleanup ... may run on a timer").
func (e *Engine) SweepExpiredTemporaryGrants(now time.Time) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.temp.Sweep(now)
}
