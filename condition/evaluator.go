// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"regexp"
	"sync"

	"github.com/wardenhq/warden/internal/pathcache"
)

// Evaluator evaluates condition trees against a context. It owns a bounded
// path-segment cache and a per-rule regex cache; callers that embed warden
// hold the engine-wide mutex for the duration of a decision, so Evaluator
// itself does not need to be safe for unsynchronized concurrent Evaluate
// calls — only the regex cache guards itself independently.
type Evaluator struct {
	paths  *pathcache.Cache
	regexC sync.Map // pattern string -> *regexp.Regexp
}

// NewEvaluator creates an Evaluator with the given path-segment cache
// capacity (0 uses pathcache.DefaultCapacity).
func NewEvaluator(pathCacheCapacity int) *Evaluator {
	return &Evaluator{paths: pathcache.New(pathCacheCapacity)}
}

// Evaluate is total: it never panics and always returns a boolean, per the
// condition-totality property in spec §8. Any internal failure (a missing
// path, a malformed regex, an uncoercible comparison) resolves to false at
// the leaf that encountered it.
func (e *Evaluator) Evaluate(n Node, ctx map[string]any) bool {
	if n.IsComposite() {
		return e.evalComposite(n, ctx)
	}
	return e.evalLeaf(n, ctx)
}

func (e *Evaluator) evalComposite(n Node, ctx map[string]any) bool {
	switch n.Operator {
	case And:
		for _, child := range n.Children {
			if !e.Evaluate(child, ctx) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range n.Children {
			if e.Evaluate(child, ctx) {
				return true
			}
		}
		return false
	case Not:
		if len(n.Children) != 1 {
			return false
		}
		return !e.Evaluate(n.Children[0], ctx)
	default:
		return false
	}
}

// undefined marks a path that resolved to nothing. It never compares equal
// to any concrete value produced by a decision context.
type undefined struct{}

func (e *Evaluator) evalLeaf(n Node, ctx map[string]any) bool {
	actual, found := e.resolve(n.Field, ctx)
	if n.Operator == Exists {
		return found && actual != nil
	}
	if !found {
		actual = undefined{}
	}

	switch n.Operator {
	case Eq:
		return equalValues(actual, n.Value)
	case Ne:
		return !equalValues(actual, n.Value)
	case Gt, Gte, Lt, Lte:
		return compareNumeric(n.Operator, actual, n.Value)
	case In:
		return membership(actual, n.Value)
	case NotIn:
		return !membership(actual, n.Value)
	case Contains:
		return contains(actual, n.Value)
	case NotContains:
		return !contains(actual, n.Value)
	case StartsWith:
		return stringRelation(actual, n.Value, func(s, p string) bool { return hasPrefix(s, p) })
	case EndsWith:
		return stringRelation(actual, n.Value, func(s, p string) bool { return hasSuffix(s, p) })
	case Regex:
		return e.regexMatch(actual, n.Value)
	default:
		return false
	}
}

func (e *Evaluator) resolve(path string, ctx map[string]any) (any, bool) {
	segs := e.paths.Split(path)
	var cur any = ctx
	for _, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (e *Evaluator) regexMatch(actual, expected any) bool {
	if _, isUndef := actual.(undefined); isUndef {
		return false
	}
	pattern, ok := expected.(string)
	if !ok {
		return false
	}
	re, ok := e.regexC.Load(pattern)
	if !ok {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		re, _ = e.regexC.LoadOrStore(pattern, compiled)
	}
	s, ok := toString(actual)
	if !ok {
		return false
	}
	return re.(*regexp.Regexp).MatchString(s)
}
