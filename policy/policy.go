// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy implements the policy engine: named policies containing
// rules matched on subject/resource/action patterns and conditions, with a
// per-policy (or engine-default) conflict-resolution strategy over the
// matched set.
package policy

import (
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/wardenhq/warden/condition"
	"github.com/wardenhq/warden/core"
)

// Rule is a single policy rule: an effect gated by subject/resource/action
// patterns and an optional condition tree.
type Rule struct {
	ID         string                `validate:"required"`
	Effect     core.PolicyEffectType `validate:"required,oneof=allow deny"`
	Priority   int
	Subjects   []string `validate:"dive,required"`
	Resources  []string `validate:"dive,required"`
	Actions    []string `validate:"dive,required"`
	Conditions *condition.Node
	Enabled    bool
}

// Policy is a named, id-identified collection of rules sharing a
// conflict-resolution strategy.
type Policy struct {
	ID         string
	Name       string `validate:"required"`
	Enabled    bool
	Rules      []Rule `validate:"dive"`
	Resolution core.ConflictResolution
}

// DefaultEvaluationBudget bounds the number of rule evaluations a single
// Decide call may perform before failing closed.
const DefaultEvaluationBudget = 10_000

// Engine is the policy store and evaluator. It is safe for concurrent use:
// every exported method takes the engine's own lock.
type Engine struct {
	mu               sync.Mutex
	policies         map[string]*Policy
	byName           map[string]string // name -> id, enforces uniqueness
	defaultRes       core.ConflictResolution
	evaluationBudget int
	evaluator        *condition.Evaluator
	globs            sync.Map
}

// Options configures an Engine.
type Options struct {
	DefaultResolution core.ConflictResolution
	EvaluationBudget  int
}

// New creates an empty policy engine.
func New(opts Options) *Engine {
	res := opts.DefaultResolution
	if res == "" {
		res = core.DenyOverride
	}
	budget := opts.EvaluationBudget
	if budget <= 0 {
		budget = DefaultEvaluationBudget
	}
	return &Engine{
		policies:         make(map[string]*Policy),
		byName:           make(map[string]string),
		defaultRes:       res,
		evaluationBudget: budget,
		evaluator:        condition.NewEvaluator(0),
	}
}

// CreatePolicy stores p, assigning a uuid if p.ID is empty. Policy names
// must be unique.
func (e *Engine) CreatePolicy(p Policy) (string, error) {
	if p.Name == "" {
		return "", oops.Code(core.CodeInvalidConfig).Errorf("policy name is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.byName[p.Name]; exists {
		return "", oops.Code(core.CodeInvalidConfig).With("name", p.Name).Errorf("policy name %q already in use", p.Name)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Resolution == "" {
		p.Resolution = e.defaultRes
	}

	cp := p
	e.policies[cp.ID] = &cp
	e.byName[cp.Name] = cp.ID
	return cp.ID, nil
}

// DeletePolicy removes a policy by id.
func (e *Engine) DeletePolicy(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.policies[id]
	if !ok {
		return oops.Code(core.CodeInvalidConfig).With("id", id).Errorf("policy %q not found", id)
	}
	delete(e.byName, p.Name)
	delete(e.policies, id)
	return nil
}

// Policy returns a copy of the policy identified by id.
func (e *Engine) Policy(id string) (Policy, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.policies[id]
	if !ok {
		return Policy{}, false
	}
	return *p, true
}

// Policies returns a copy of every policy, in no particular order.
func (e *Engine) Policies() []Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Policy, 0, len(e.policies))
	for _, p := range e.policies {
		out = append(out, *p)
	}
	return out
}

// DefaultResolution returns the engine's fallback conflict-resolution
// strategy, used by policies that don't set their own.
func (e *Engine) DefaultResolution() core.ConflictResolution {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultRes
}

// ReplaceAll discards every policy and reinserts policies, preserving each
// policy's own ID and name rather than regenerating or re-validating
// uniqueness against prior state. Used by full-replace snapshot import.
func (e *Engine) ReplaceAll(defaultRes core.ConflictResolution, policies []Policy) error {
	if defaultRes == "" {
		defaultRes = core.DenyOverride
	}
	e.mu.Lock()
	e.policies = make(map[string]*Policy)
	e.byName = make(map[string]string)
	e.defaultRes = defaultRes
	e.mu.Unlock()

	for _, p := range policies {
		if _, err := e.CreatePolicy(p); err != nil {
			return err
		}
	}
	return nil
}

// Decide evaluates every relevant, enabled policy's enabled rules against
// (subject, resource, action, context) and resolves the matched set per
// each policy's own conflict-resolution strategy. Relevance pre-filtering
// and full evaluation are folded into a single pass per policy (an
// implementation-level shortcut that preserves spec.md §4.5's observable
// semantics: a policy with no rule whose patterns could ever match the
// request contributes nothing either way).
func (e *Engine) Decide(subject, resource, action string, ctx map[string]any) core.Decision {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	evaluations := 0
	var anyAllow bool

	ids := make([]string, 0, len(e.policies))
	for id := range e.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, pid := range ids {
		p := e.policies[pid]
		if !p.Enabled {
			continue
		}
		var policyMatches []Rule
		for _, r := range p.Rules {
			if !r.Enabled {
				continue
			}
			evaluations++
			if evaluations > e.evaluationBudget {
				return core.Decision{
					Allowed: false, Duration: time.Since(start),
					Reason: "evaluation budget exceeded", Source: "policy",
				}
			}
			if !e.patternMatches(r.Subjects, subject) {
				continue
			}
			if !e.patternMatches(r.Resources, resource) {
				continue
			}
			if !e.patternMatches(r.Actions, action) {
				continue
			}
			if r.Conditions != nil && !e.evaluator.Evaluate(*r.Conditions, ctx) {
				continue
			}
			policyMatches = append(policyMatches, r)
		}
		if len(policyMatches) == 0 {
			continue
		}
		effect, reason := resolve(p.Resolution, policyMatches)
		if effect == core.EffectDeny {
			return core.Decision{
				Allowed: false, Duration: time.Since(start),
				Reason: reason, Source: "policy", MatchedRole: p.Name,
			}
		}
		anyAllow = true
	}

	if anyAllow {
		return core.Decision{Allowed: true, Duration: time.Since(start), Source: "policy"}
	}
	return core.Decision{Allowed: false, Duration: time.Since(start), Reason: "no matching policy", Source: "policy"}
}

// resolve applies a single policy's conflict-resolution strategy to its
// matched rule set, returning (effect, denyReason).
func resolve(strategy core.ConflictResolution, matches []Rule) (core.PolicyEffectType, string) {
	switch strategy {
	case core.AllowOverride:
		for _, r := range matches {
			if r.Effect == core.EffectAllow {
				return core.EffectAllow, ""
			}
		}
		return core.EffectDeny, "no allow"

	case core.FirstApplicable:
		sorted := append([]Rule(nil), matches...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
		eff := sorted[0].Effect
		reason := ""
		if eff == core.EffectDeny {
			reason = "denied by highest-priority rule"
		}
		return eff, reason

	case core.OnlyOneApplicable:
		if len(matches) != 1 {
			return core.EffectDeny, "ambiguous"
		}
		eff := matches[0].Effect
		reason := ""
		if eff == core.EffectDeny {
			reason = "denied by the single applicable rule"
		}
		return eff, reason

	default: // DenyOverride
		for _, r := range matches {
			if r.Effect == core.EffectDeny {
				return core.EffectDeny, "denied by policy rule"
			}
		}
		for _, r := range matches {
			if r.Effect == core.EffectAllow {
				return core.EffectAllow, ""
			}
		}
		return core.EffectDeny, "no allow"
	}
}

func (e *Engine) patternMatches(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if p == core.Wildcard || p == value {
			return true
		}
		if e.globMatch(p, value) {
			return true
		}
	}
	return false
}

func (e *Engine) globMatch(pattern, value string) bool {
	cached, ok := e.globs.Load(pattern)
	var g glob.Glob
	if ok {
		g = cached.(glob.Glob)
	} else {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			e.globs.Store(pattern, glob.Glob(nil))
			return false
		}
		g = compiled
		e.globs.Store(pattern, g)
	}
	if g == nil {
		return false
	}
	return g.Match(value)
}
