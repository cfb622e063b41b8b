// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package rbac

import (
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/wardenhq/warden/core"
)

// Graph is the role inheritance DAG plus user->role assignments. It is safe
// for concurrent use: every exported method takes the graph's own lock, so a
// Graph can be embedded in a larger engine that serializes mutations at a
// higher level, or used standalone.
type Graph struct {
	mu       sync.RWMutex
	roles    map[string]*Role
	children map[string][]string // parent name -> direct child names
	userRole map[string]map[string]struct{}
	maxDepth int

	effective map[string][]core.PermissionGrant // role name -> memoized closure
}

// New creates an empty role graph. maxDepth <= 0 uses DefaultMaxDepth.
func New(maxDepth int) *Graph {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Graph{
		roles:     make(map[string]*Role),
		children:  make(map[string][]string),
		userRole:  make(map[string]map[string]struct{}),
		maxDepth:  maxDepth,
		effective: make(map[string][]core.PermissionGrant),
	}
}

// CreateRole adds a new role. A brand-new role can never introduce a cycle
// (nothing can already point to a node that didn't exist), so only the
// max-depth bound is checked here.
func (g *Graph) CreateRole(name string, opts Options) error {
	if name == "" {
		return oops.Code(core.CodeInvalidConfig).Errorf("role name must not be empty")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.roles[name]; exists {
		return oops.Code(core.CodeRoleAlreadyExists).With("role", name).Wrap(core.ErrRoleAlreadyExists)
	}
	for _, p := range opts.Parents {
		if _, ok := g.roles[p]; !ok {
			return oops.Code(core.CodeRoleNotFound).With("role", p).Wrapf(core.ErrRoleNotFound, "parent role %q", p)
		}
	}

	now := time.Now()
	r := &Role{
		Name:        name,
		DisplayName: opts.DisplayName,
		Description: opts.Description,
		Metadata:    opts.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
		Grants:      append([]core.PermissionGrant(nil), opts.Grants...),
		Parents:     append([]string(nil), opts.Parents...),
	}
	g.roles[name] = r
	for _, p := range opts.Parents {
		g.children[p] = append(g.children[p], name)
	}

	if depth := g.depthFrom(name); depth > g.maxDepth {
		g.deleteRoleUnlocked(name)
		return oops.Code(core.CodeInvalidConfig).With("role", name).With("depth", depth).With("maxDepth", g.maxDepth).
			Wrap(core.ErrMaxDepthExceeded)
	}

	g.invalidateUnlocked(name)
	return nil
}

// UpdateRole applies a partial edit. Changing Parents re-validates
// acyclicity and the depth bound before the edit is committed.
func (g *Graph) UpdateRole(name string, u Update) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.roles[name]
	if !ok {
		return oops.Code(core.CodeRoleNotFound).With("role", name).Wrap(core.ErrRoleNotFound)
	}

	if u.DisplayName != nil {
		r.DisplayName = *u.DisplayName
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Metadata != nil {
		r.Metadata = u.Metadata
	}

	if u.Parents != nil {
		for _, p := range *u.Parents {
			if p == name {
				return oops.Code(core.CodeCircularInheritance).With("role", name).Wrap(core.ErrCircularInheritance)
			}
			if _, ok := g.roles[p]; !ok {
				return oops.Code(core.CodeRoleNotFound).With("role", p).Wrapf(core.ErrRoleNotFound, "parent role %q", p)
			}
		}
		for _, newParent := range *u.Parents {
			if g.isAncestor(newParent, name) {
				return oops.Code(core.CodeCircularInheritance).
					With("role", name).With("newParent", newParent).
					Wrap(core.ErrCircularInheritance)
			}
		}

		oldParents := r.Parents
		g.rewireParents(name, oldParents, *u.Parents)
		r.Parents = append([]string(nil), *u.Parents...)

		if depth := g.depthFrom(name); depth > g.maxDepth {
			g.rewireParents(name, *u.Parents, oldParents)
			r.Parents = append([]string(nil), oldParents...)
			return oops.Code(core.CodeInvalidConfig).With("role", name).With("depth", depth).With("maxDepth", g.maxDepth).
				Wrap(core.ErrMaxDepthExceeded)
		}
	}

	r.UpdatedAt = time.Now()
	g.invalidateUnlocked(name)
	return nil
}

// DeleteRole removes a role and its assignments and edges. Descendant roles
// keep their own (now severed) parent reference removed silently; callers
// that want to forbid deleting an in-use role should check UsersWithRole and
// Descendants first.
func (g *Graph) DeleteRole(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.roles[name]; !ok {
		return oops.Code(core.CodeRoleNotFound).With("role", name).Wrap(core.ErrRoleNotFound)
	}
	g.deleteRoleUnlocked(name)
	return nil
}

func (g *Graph) deleteRoleUnlocked(name string) {
	r := g.roles[name]
	if r == nil {
		return
	}
	// Drop memoized closures while the child edges are still present, so
	// descendants stop carrying this role's grants.
	g.invalidateUnlocked(name)
	for _, p := range r.Parents {
		g.children[p] = removeString(g.children[p], name)
	}
	for _, c := range g.children[name] {
		if cr := g.roles[c]; cr != nil {
			cr.Parents = removeString(cr.Parents, name)
		}
	}
	delete(g.children, name)
	delete(g.roles, name)
	for u, set := range g.userRole {
		delete(set, name)
		if len(set) == 0 {
			delete(g.userRole, u)
		}
	}
}

// AssignRole grants a role to a user directly.
func (g *Graph) AssignRole(user, role string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.roles[role]; !ok {
		return oops.Code(core.CodeRoleNotFound).With("role", role).Wrap(core.ErrRoleNotFound)
	}
	if g.userRole[user] == nil {
		g.userRole[user] = make(map[string]struct{})
	}
	g.userRole[user][role] = struct{}{}
	return nil
}

// UnassignRole revokes a direct role assignment. Idempotent: unassigning a
// role the user never had is not an error.
func (g *Graph) UnassignRole(user, role string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if set, ok := g.userRole[user]; ok {
		delete(set, role)
		if len(set) == 0 {
			delete(g.userRole, user)
		}
	}
	return nil
}

// Grant adds a permission grant directly to role. When recursive is true,
// the same grant is also added to every descendant role (roles that inherit
// from this one), matching the "apply to this role and everything beneath
// it" convenience mode.
func (g *Graph) Grant(role string, grant core.PermissionGrant, recursive bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.roles[role]
	if !ok {
		return oops.Code(core.CodeRoleNotFound).With("role", role).Wrap(core.ErrRoleNotFound)
	}
	r.Grants = append(r.Grants, grant)
	r.UpdatedAt = time.Now()
	g.invalidateUnlocked(role)

	if recursive {
		for _, d := range g.descendantsUnlocked(role) {
			dr := g.roles[d]
			dr.Grants = append(dr.Grants, grant)
			dr.UpdatedAt = time.Now()
			g.invalidateUnlocked(d)
		}
	}
	return nil
}

// Revoke removes a permission grant (matched by exact resource/action pair)
// from role, and from every descendant when recursive is true.
func (g *Graph) Revoke(role string, grant core.PermissionGrant, recursive bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.roles[role]
	if !ok {
		return oops.Code(core.CodeRoleNotFound).With("role", role).Wrap(core.ErrRoleNotFound)
	}
	r.Grants = removeGrant(r.Grants, grant)
	r.UpdatedAt = time.Now()
	g.invalidateUnlocked(role)

	if recursive {
		for _, d := range g.descendantsUnlocked(role) {
			dr := g.roles[d]
			dr.Grants = removeGrant(dr.Grants, grant)
			dr.UpdatedAt = time.Now()
			g.invalidateUnlocked(d)
		}
	}
	return nil
}

// Check evaluates whether user may perform action on resource, considering
// every role the user holds (directly or by inheritance). The first
// matching grant determines the allow; roles are walked breadth-first from
// the user's direct roles, whose relative order is not defined, and each
// role's grants in their memoized order. Absence of any match is a deny.
func (g *Graph) Check(user, resource, action string) core.Decision {
	start := time.Now()
	g.mu.RLock()
	defer g.mu.RUnlock()

	roles := g.effectiveRolesUnlocked(user)
	if len(roles) == 0 {
		return core.Decision{
			Allowed:  false,
			Duration: time.Since(start),
			Reason:   "user has no assigned roles",
			Source:   "rbac",
		}
	}

	for _, role := range roles {
		for _, grant := range g.effectiveGrantsUnlocked(role, make(map[string]bool)) {
			if grant.Matches(resource, action) {
				return core.Decision{
					Allowed:      true,
					Duration:     time.Since(start),
					MatchedRole:  role,
					MatchedGrant: grant.String(),
					Source:       "rbac",
				}
			}
		}
	}

	return core.Decision{
		Allowed:  false,
		Duration: time.Since(start),
		Reason:   "no matching grants",
		Source:   "rbac",
	}
}

// UsersWithRole returns every user directly assigned role (not including
// users who only hold it by inheritance through a descendant role).
func (g *Graph) UsersWithRole(role string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for u, set := range g.userRole {
		if _, ok := set[role]; ok {
			out = append(out, u)
		}
	}
	return out
}

// Descendants returns every role that transitively inherits from role.
func (g *Graph) Descendants(role string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.descendantsUnlocked(role)
}

// EffectiveRoles returns every role user holds, directly or by
// inheritance.
func (g *Graph) EffectiveRoles(user string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.effectiveRolesUnlocked(user)
}

// EffectiveGrants returns the memoized closure of permission grants role
// carries: its own grants plus every ancestor's, deduplicated.
func (g *Graph) EffectiveGrants(role string) []core.PermissionGrant {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.effectiveGrantsUnlocked(role, make(map[string]bool))
}

// Role returns a defensive copy of the named role.
func (g *Graph) Role(name string) (*Role, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.roles[name]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// Roles returns a defensive copy of every role in the graph, in no
// particular order.
func (g *Graph) Roles() []*Role {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Role, 0, len(g.roles))
	for _, r := range g.roles {
		out = append(out, r.clone())
	}
	return out
}

// Assignments returns every user's set of direct role names, in no
// particular order.
func (g *Graph) Assignments() map[string][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string][]string, len(g.userRole))
	for u, set := range g.userRole {
		roles := make([]string, 0, len(set))
		for r := range set {
			roles = append(roles, r)
		}
		out[u] = roles
	}
	return out
}

// MaxDepth returns the graph's configured maximum inheritance depth.
func (g *Graph) MaxDepth() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.maxDepth
}

// ReplaceAll discards every role and assignment and rebuilds the graph from
// roles (already in a dependency order safe to create in, parents before
// children) and assignments. Used by full-replace snapshot import.
func (g *Graph) ReplaceAll(maxDepth int, roles []*Role, assignments map[string][]string) error {
	g.mu.Lock()
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	g.roles = make(map[string]*Role)
	g.children = make(map[string][]string)
	g.userRole = make(map[string]map[string]struct{})
	g.effective = make(map[string][]core.PermissionGrant)
	g.maxDepth = maxDepth
	g.mu.Unlock()

	for _, r := range roles {
		if err := g.CreateRole(r.Name, Options{
			DisplayName: r.DisplayName,
			Description: r.Description,
			Metadata:    r.Metadata,
			Parents:     r.Parents,
			Grants:      r.Grants,
		}); err != nil {
			return err
		}
	}
	for user, roleNames := range assignments {
		for _, rn := range roleNames {
			if err := g.AssignRole(user, rn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) effectiveRolesUnlocked(user string) []string {
	direct := g.userRole[user]
	if len(direct) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var order []string
	queue := make([]string, 0, len(direct))
	for r := range direct {
		queue = append(queue, r)
	}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if seen[r] {
			continue
		}
		seen[r] = true
		order = append(order, r)
		if role, ok := g.roles[r]; ok {
			queue = append(queue, role.Parents...)
		}
	}
	return order
}

func (g *Graph) effectiveGrantsUnlocked(role string, visiting map[string]bool) []core.PermissionGrant {
	if cached, ok := g.effective[role]; ok {
		return cached
	}
	if visiting[role] {
		return nil
	}
	visiting[role] = true

	r, ok := g.roles[role]
	if !ok {
		return nil
	}

	seen := make(map[string]bool, len(r.Grants))
	var grants []core.PermissionGrant
	for _, gr := range r.Grants {
		if !seen[gr.String()] {
			seen[gr.String()] = true
			grants = append(grants, gr)
		}
	}
	for _, p := range r.Parents {
		for _, gr := range g.effectiveGrantsUnlocked(p, visiting) {
			if !seen[gr.String()] {
				seen[gr.String()] = true
				grants = append(grants, gr)
			}
		}
	}

	g.effective[role] = grants
	return grants
}

func (g *Graph) descendantsUnlocked(role string) []string {
	seen := make(map[string]bool)
	var order []string
	queue := append([]string(nil), g.children[role]...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c] {
			continue
		}
		seen[c] = true
		order = append(order, c)
		queue = append(queue, g.children[c]...)
	}
	return order
}

// isAncestor reports whether target is already reachable by walking
// start's existing parent chain, i.e. whether start already inherits
// (directly or transitively) from target.
func (g *Graph) isAncestor(start, target string) bool {
	seen := make(map[string]bool)
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		r, ok := g.roles[cur]
		if !ok {
			continue
		}
		for _, p := range r.Parents {
			if p == target {
				return true
			}
			queue = append(queue, p)
		}
	}
	return false
}

// depthFrom returns the longest parent-chain length starting at role,
// counting role itself as depth 1.
func (g *Graph) depthFrom(role string) int {
	var walk func(name string, seen map[string]bool) int
	walk = func(name string, seen map[string]bool) int {
		if seen[name] {
			return 0
		}
		seen[name] = true
		r, ok := g.roles[name]
		if !ok {
			return 1
		}
		best := 0
		for _, p := range r.Parents {
			if d := walk(p, seen); d > best {
				best = d
			}
		}
		return best + 1
	}
	return walk(role, make(map[string]bool))
}

func (g *Graph) rewireParents(name string, oldParents, newParents []string) {
	for _, p := range oldParents {
		g.children[p] = removeString(g.children[p], name)
	}
	for _, p := range newParents {
		g.children[p] = append(g.children[p], name)
	}
}

// invalidateUnlocked drops the memoized closure for role and every role
// that transitively inherits from it, since their effective grants may now
// be stale.
func (g *Graph) invalidateUnlocked(role string) {
	delete(g.effective, role)
	for _, d := range g.descendantsUnlocked(role) {
		delete(g.effective, d)
	}
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func removeGrant(list []core.PermissionGrant, g core.PermissionGrant) []core.PermissionGrant {
	out := list[:0]
	for _, v := range list {
		if v != g {
			out = append(out, v)
		}
	}
	return out
}
