// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package rbac

import (
	"errors"
	"testing"

	"github.com/wardenhq/warden/core"
)

func mustCreate(t *testing.T, g *Graph, name string, opts Options) {
	t.Helper()
	if err := g.CreateRole(name, opts); err != nil {
		t.Fatalf("create role %q: %v", name, err)
	}
}

func TestInheritanceResolvesAncestorGrants(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "viewer", Options{Grants: []core.PermissionGrant{{Resource: "doc", Action: "read"}}})
	mustCreate(t, g, "editor", Options{Parents: []string{"viewer"}, Grants: []core.PermissionGrant{{Resource: "doc", Action: "write"}}})

	if err := g.AssignRole("alice", "editor"); err != nil {
		t.Fatal(err)
	}

	if d := g.Check("alice", "doc", "read"); !d.Allowed {
		t.Fatalf("expected inherited read to be allowed: %+v", d)
	}
	if d := g.Check("alice", "doc", "write"); !d.Allowed {
		t.Fatalf("expected direct write to be allowed: %+v", d)
	}
	if d := g.Check("alice", "doc", "delete"); d.Allowed {
		t.Fatalf("expected delete to be denied: %+v", d)
	}
}

func TestCircularInheritanceRejected(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "a", Options{})
	mustCreate(t, g, "b", Options{Parents: []string{"a"}})
	mustCreate(t, g, "c", Options{Parents: []string{"b"}})

	newParents := []string{"c"}
	err := g.UpdateRole("a", Update{Parents: &newParents})
	if err == nil {
		t.Fatal("expected circular inheritance to be rejected")
	}
	if !errors.Is(err, core.ErrCircularInheritance) {
		t.Fatalf("expected ErrCircularInheritance, got %v", err)
	}

	// The graph must remain usable after a rejected edit.
	if roles := g.EffectiveRoles("nobody"); len(roles) != 0 {
		t.Fatalf("expected no roles for unassigned user, got %v", roles)
	}
}

func TestMaxDepthExceeded(t *testing.T) {
	g := New(2)
	mustCreate(t, g, "l1", Options{})
	mustCreate(t, g, "l2", Options{Parents: []string{"l1"}})
	if err := g.CreateRole("l3", Options{Parents: []string{"l2"}}); err == nil {
		t.Fatal("expected max depth to be exceeded")
	} else if !errors.Is(err, core.ErrMaxDepthExceeded) {
		t.Fatalf("expected ErrMaxDepthExceeded, got %v", err)
	}
	if _, ok := g.Role("l3"); ok {
		t.Fatal("role should have been rolled back after depth rejection")
	}
}

func TestWildcardGrantMatches(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "admin", Options{Grants: []core.PermissionGrant{{Resource: core.Wildcard, Action: core.Wildcard}}})
	_ = g.AssignRole("root", "admin")

	if d := g.Check("root", "anything", "anything"); !d.Allowed {
		t.Fatalf("expected wildcard grant to allow everything: %+v", d)
	}
}

func TestRecursiveGrantAppliesToDescendants(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "base", Options{})
	mustCreate(t, g, "child", Options{Parents: []string{"base"}})

	if err := g.Grant("base", core.PermissionGrant{Resource: "doc", Action: "read"}, true); err != nil {
		t.Fatal(err)
	}

	// child gets its own direct copy of the grant, not just inheritance.
	child, _ := g.Role("child")
	grants := child.Grants
	found := false
	for _, gr := range grants {
		if gr.Resource == "doc" && gr.Action == "read" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected recursive grant on child, got %v", grants)
	}
}

func TestEffectiveGrantsMemoizedAndInvalidated(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "r", Options{Grants: []core.PermissionGrant{{Resource: "doc", Action: "read"}}})

	first := g.EffectiveGrants("r")
	if len(first) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(first))
	}

	if err := g.Grant("r", core.PermissionGrant{Resource: "doc", Action: "write"}, false); err != nil {
		t.Fatal(err)
	}
	second := g.EffectiveGrants("r")
	if len(second) != 2 {
		t.Fatalf("expected memoized cache to be invalidated after grant, got %d grants", len(second))
	}
}

func TestDeleteRoleRemovesAssignmentsAndEdges(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "parent", Options{})
	mustCreate(t, g, "child", Options{Parents: []string{"parent"}})
	_ = g.AssignRole("u1", "child")

	if err := g.DeleteRole("child"); err != nil {
		t.Fatal(err)
	}
	if roles := g.EffectiveRoles("u1"); len(roles) != 0 {
		t.Fatalf("expected assignment to be dropped, got %v", roles)
	}
	if _, ok := g.Role("child"); ok {
		t.Fatal("expected role to be gone")
	}
}

func TestUsersWithRoleIsDirectOnly(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "base", Options{})
	mustCreate(t, g, "child", Options{Parents: []string{"base"}})
	_ = g.AssignRole("u1", "child")

	if users := g.UsersWithRole("base"); len(users) != 0 {
		t.Fatalf("expected no direct assignees of base, got %v", users)
	}
	if users := g.UsersWithRole("child"); len(users) != 1 || users[0] != "u1" {
		t.Fatalf("expected u1 as direct assignee of child, got %v", users)
	}
	if desc := g.Descendants("base"); len(desc) != 1 || desc[0] != "child" {
		t.Fatalf("expected child as descendant of base, got %v", desc)
	}
}

func TestUnassignRoleIsIdempotent(t *testing.T) {
	g := New(0)
	mustCreate(t, g, "r", Options{})
	if err := g.UnassignRole("nobody", "r"); err != nil {
		t.Fatalf("expected idempotent unassign to succeed, got %v", err)
	}
}

func TestCheckWithNoRolesDeniesWithReason(t *testing.T) {
	g := New(0)
	d := g.Check("ghost", "doc", "read")
	if d.Allowed {
		t.Fatal("expected deny")
	}
	if d.Reason == "" {
		t.Fatal("expected a deny reason")
	}
}
