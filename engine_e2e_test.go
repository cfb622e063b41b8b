// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package warden_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive
	. "github.com/onsi/gomega"    //nolint:revive

	"github.com/wardenhq/warden"
	"github.com/wardenhq/warden/abac"
	"github.com/wardenhq/warden/attrs"
	"github.com/wardenhq/warden/condition"
	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/policy"
	"github.com/wardenhq/warden/rbac"
	"github.com/wardenhq/warden/temporary"
)

var _ = Describe("Engine", func() {
	var eng *warden.Engine

	BeforeEach(func() {
		eng = warden.New(warden.DefaultConfig())
	})

	It("grants a directly-assigned role's own permission", func() {
		Expect(eng.CreateRole("admin", rbac.Options{})).To(Succeed())
		Expect(eng.GrantPermission("admin", core.PermissionGrant{Resource: "users", Action: core.Wildcard}, false)).To(Succeed())
		Expect(eng.AssignRole("alice", "admin")).To(Succeed())

		d := eng.Check("alice", "users", "delete", warden.CheckOptions{})
		Expect(d.Allowed).To(BeTrue())
	})

	It("resolves an inherited permission through a parent role", func() {
		Expect(eng.CreateRole("admin", rbac.Options{})).To(Succeed())
		Expect(eng.CreateRole("editor", rbac.Options{Parents: []string{"admin"}})).To(Succeed())
		Expect(eng.GrantPermission("admin", core.PermissionGrant{Resource: "posts", Action: "read"}, false)).To(Succeed())
		Expect(eng.AssignRole("bob", "editor")).To(Succeed())

		d := eng.Check("bob", "posts", "read", warden.CheckOptions{})
		Expect(d.Allowed).To(BeTrue())
	})

	It("rejects a role edit that would close an inheritance cycle", func() {
		Expect(eng.CreateRole("admin", rbac.Options{})).To(Succeed())
		Expect(eng.CreateRole("editor", rbac.Options{Parents: []string{"admin"}})).To(Succeed())
		Expect(eng.GrantPermission("admin", core.PermissionGrant{Resource: "posts", Action: "read"}, false)).To(Succeed())
		Expect(eng.AssignRole("bob", "editor")).To(Succeed())

		parents := []string{"editor"}
		err := eng.UpdateRole("admin", rbac.Update{Parents: &parents})
		Expect(err).To(MatchError(core.ErrCircularInheritance))

		d := eng.Check("bob", "posts", "read", warden.CheckOptions{})
		Expect(d.Allowed).To(BeTrue(), "the rejected edit must leave the graph untouched")
	})

	It("matches an ABAC condition on the resource owner and denies everyone else", func() {
		_, err := eng.AddABACRule(abac.Rule{
			ID:         "owner-update",
			Subjects:   []string{"Post"},
			Actions:    []string{"update"},
			Conditions: conditionPtr(condition.NewLeaf("resource.attributes.authorId", condition.Eq, "bob")),
			Enabled:    true,
		})
		Expect(err).NotTo(HaveOccurred())

		owned := attrs.Context{
			Subject:  attrs.NewUserContext("bob", nil),
			Resource: attrs.NewResourceContext("Post", "p1", map[string]any{"authorId": "bob"}),
			Action:   "update",
		}
		owned.Subject.Type = "Post"
		d := eng.Check("bob", "posts", "update", warden.CheckOptions{Context: &owned})
		Expect(d.Allowed).To(BeTrue())

		notOwned := owned
		notOwned.Resource = attrs.NewResourceContext("Post", "p1", map[string]any{"authorId": "alice"})
		d = eng.Check("bob", "posts", "update", warden.CheckOptions{Context: &notOwned})
		Expect(d.Allowed).To(BeFalse())
	})

	It("applies deny-override when both an allow and a deny rule match", func() {
		_, err := eng.CreatePolicy(policy.Policy{
			Name:       "admin-area",
			Enabled:    true,
			Resolution: core.DenyOverride,
			Rules: []policy.Rule{
				{ID: "allow-all", Effect: core.EffectAllow, Subjects: []string{"*"}, Resources: []string{"admin"}, Actions: []string{"*"}, Enabled: true},
				{ID: "deny-suspended", Effect: core.EffectDeny, Subjects: []string{"*"}, Resources: []string{"admin"}, Actions: []string{"*"}, Enabled: true},
			},
		})
		Expect(err).NotTo(HaveOccurred())

		d := eng.Check("dave", "admin", "view", warden.CheckOptions{})
		Expect(d.Allowed).To(BeFalse())
	})

	It("expires a temporary permission after its time bound and sweeps it", func() {
		now := time.Now()
		_, err := eng.GrantTempPermission("carol", "sensitive", "read", now.Add(time.Hour), temporary.GrantOptions{})
		Expect(err).NotTo(HaveOccurred())

		d := eng.Check("carol", "sensitive", "read", warden.CheckOptions{})
		Expect(d.Allowed).To(BeTrue())

		removed := eng.SweepExpiredTemporaryGrants(now.Add(2 * time.Hour))
		Expect(removed).To(HaveLen(1))

		d = eng.Check("carol", "sensitive", "read", warden.CheckOptions{})
		Expect(d.Allowed).To(BeFalse())
	})

	It("consumes a one-time permission on its first successful match only", func() {
		_, err := eng.GrantOncePermission("erin", "vault", "open", time.Time{}, temporary.GrantOptions{})
		Expect(err).NotTo(HaveOccurred())

		first := eng.Check("erin", "vault", "open", warden.CheckOptions{})
		Expect(first.Allowed).To(BeTrue())

		second := eng.Check("erin", "vault", "open", warden.CheckOptions{})
		Expect(second.Allowed).To(BeFalse())
	})

	It("never serves a stale cached decision immediately after a mutation", func() {
		Expect(eng.CreateRole("viewer", rbac.Options{})).To(Succeed())
		Expect(eng.AssignRole("frank", "viewer")).To(Succeed())

		denied := eng.Check("frank", "docs", "read", warden.CheckOptions{})
		Expect(denied.Allowed).To(BeFalse())

		Expect(eng.GrantPermission("viewer", core.PermissionGrant{Resource: "docs", Action: "read"}, false)).To(Succeed())

		allowed := eng.Check("frank", "docs", "read", warden.CheckOptions{})
		Expect(allowed.Allowed).To(BeTrue())
	})
})

func conditionPtr(n condition.Node) *condition.Node { return &n }
