// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package abac

import (
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/wardenhq/warden/condition"
	"github.com/wardenhq/warden/core"
)

// Engine holds the ABAC rule set and field-permission declarations. It is
// safe for concurrent use: every exported method takes the engine's own
// lock.
type Engine struct {
	mu        sync.Mutex
	rules     map[string]*Rule
	ordered   []*Rule // kept sorted by descending priority, insertion-stable
	nextSeq   int
	strict    bool
	evaluator *condition.Evaluator
	globs     sync.Map // pattern string -> glob.Glob

	fields map[string]*FieldPermission // "subjectType|action" -> declaration
}

// New creates an ABAC engine. strict controls the no-match fallback: true
// denies when no rule matches, false allows (treats it as "no applicable
// policy").
func New(strict bool) *Engine {
	return &Engine{
		rules:     make(map[string]*Rule),
		evaluator: condition.NewEvaluator(0),
		strict:    strict,
		fields:    make(map[string]*FieldPermission),
	}
}

// AddRule inserts a rule. The caller supplies the id; an empty or
// already-used id is rejected.
func (e *Engine) AddRule(r Rule) (string, error) {
	if len(r.Subjects) == 0 {
		r.Subjects = []string{core.Wildcard}
	}
	if len(r.Actions) == 0 {
		r.Actions = []string{core.Wildcard}
	}
	if r.ID == "" {
		return "", oops.Code(core.CodeInvalidConfig).Errorf("rule id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.rules[r.ID]; exists {
		return "", oops.Code(core.CodeInvalidConfig).With("id", r.ID).Errorf("rule %q already exists", r.ID)
	}

	rule := r
	rule.insertSeq = e.nextSeq
	e.nextSeq++
	e.rules[rule.ID] = &rule
	e.ordered = append(e.ordered, &rule)
	e.resort()
	return rule.ID, nil
}

// RemoveRule deletes a rule by id.
func (e *Engine) RemoveRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rules[id]; !ok {
		return oops.Code(core.CodeInvalidConfig).With("id", id).Errorf("rule %q not found", id)
	}
	delete(e.rules, id)
	for i, r := range e.ordered {
		if r.ID == id {
			e.ordered = append(e.ordered[:i], e.ordered[i+1:]...)
			break
		}
	}
	return nil
}

// Rules returns a copy of every rule, in no particular order.
func (e *Engine) Rules() []Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Rule, 0, len(e.rules))
	for _, r := range e.rules {
		out = append(out, *r)
	}
	return out
}

// Strict reports whether the engine denies (rather than allows) when no
// rule matches.
func (e *Engine) Strict() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strict
}

// ReplaceAll discards every rule and reinserts rules, preserving each
// rule's own ID rather than generating new ones. Used by full-replace
// snapshot import.
func (e *Engine) ReplaceAll(strict bool, rules []Rule) error {
	e.mu.Lock()
	e.rules = make(map[string]*Rule)
	e.ordered = nil
	e.nextSeq = 0
	e.strict = strict
	e.mu.Unlock()

	for _, r := range rules {
		if _, err := e.AddRule(r); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) resort() {
	sort.SliceStable(e.ordered, func(i, j int) bool {
		return e.ordered[i].Priority > e.ordered[j].Priority
	})
}

// DeclareFields registers (or replaces) the field-visibility declaration
// for a (subject-type, action) pair.
func (e *Engine) DeclareFields(fp FieldPermission) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := fp
	e.fields[fieldKey(fp.SubjectType, fp.Action)] = &cp
}

func fieldKey(subjectType, action string) string {
	return subjectType + "|" + action
}

// Decide evaluates every enabled rule against (action, subjectType,
// context), in priority order, and returns the ABAC decision.
func (e *Engine) Decide(subjectType, action string, ctx map[string]any) core.Decision {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	var matched []*Rule
	var invertedMatch bool

	for _, r := range e.ordered {
		if !r.Enabled {
			continue
		}
		if !e.patternMatches(r.Actions, action) {
			continue
		}
		if !e.patternMatches(r.Subjects, subjectType) {
			continue
		}
		if r.Conditions != nil {
			extended := withSubjectType(ctx, subjectType)
			if !e.evaluator.Evaluate(*r.Conditions, extended) {
				continue
			}
		}
		matched = append(matched, r)
		if r.Inverted {
			invertedMatch = true
		}
	}

	if invertedMatch {
		return core.Decision{Allowed: false, Duration: time.Since(start), Reason: "explicitly denied by rule", Source: "abac"}
	}

	for _, r := range matched {
		if !r.Inverted {
			return core.Decision{Allowed: true, Duration: time.Since(start), MatchedGrant: r.Name, Source: "abac"}
		}
	}

	if e.strict {
		return core.Decision{Allowed: false, Duration: time.Since(start), Reason: "no applicable rule", Source: "abac"}
	}
	return core.Decision{Allowed: true, Duration: time.Since(start), Reason: "no applicable rule, non-strict default allow", Source: "abac"}
}

func withSubjectType(ctx map[string]any, subjectType string) map[string]any {
	extended := make(map[string]any, len(ctx)+1)
	for k, v := range ctx {
		extended[k] = v
	}
	if subj, ok := extended["subject"].(map[string]any); ok {
		subjCopy := make(map[string]any, len(subj)+1)
		for k, v := range subj {
			subjCopy[k] = v
		}
		subjCopy["type"] = subjectType
		extended["subject"] = subjCopy
	} else {
		extended["subject"] = map[string]any{"type": subjectType}
	}
	return extended
}

// AccessibleFields returns the fields visible for (subjectType, action)
// given ctx, applying any per-field conditions. A pair with no declaration
// returns nil (callers should treat that as "no restriction declared").
func (e *Engine) AccessibleFields(subjectType, action string, ctx map[string]any) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	fp, ok := e.fields[fieldKey(subjectType, action)]
	if !ok {
		return nil
	}

	denied := make(map[string]bool, len(fp.Denied))
	for _, f := range fp.Denied {
		denied[f] = true
	}

	var out []string
	for _, f := range fp.Allowed {
		if denied[f] {
			continue
		}
		if cond, ok := fp.Conditions[f]; ok && cond != nil {
			if !e.evaluator.Evaluate(*cond, ctx) {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// FilterFields projects obj down to the accessible field set for
// (subjectType, action). With no declaration, obj is returned unchanged.
func (e *Engine) FilterFields(subjectType, action string, obj map[string]any, ctx map[string]any) map[string]any {
	fields := e.AccessibleFields(subjectType, action, ctx)
	if fields == nil {
		return obj
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := obj[f]; ok {
			out[f] = v
		}
	}
	return out
}

// patternMatches reports whether any pattern in patterns matches value,
// literally, via the bare wildcard, or via a cached glob.
func (e *Engine) patternMatches(patterns []string, value string) bool {
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
