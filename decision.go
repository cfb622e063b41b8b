// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package warden

import (
	"time"

	"github.com/wardenhq/warden/attrs"
	"github.com/wardenhq/warden/cache"
	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/events"
)

// CheckOptions modifies a single Check call.
type CheckOptions struct {
	// SkipCache bypasses both the cache lookup and the cache write for
	// this call.
	SkipCache bool
	// Context carries the subject/resource/environment attributes ABAC
	// and policy evaluation run against. A nil Context skips ABAC (spec
	// §4.9 step 4 runs "only when the call provided a context") but
	// policy evaluation still runs with whatever context is given (may
	// be nil).
	Context *attrs.Context
}

// Check evaluates whether user may perform action on resource, running the
// full pipeline: cache, temporary overlay, RBAC, ABAC (if a context was
// supplied), policy, default deny. It is fully synchronous and never
// suspends.
func (e *Engine) Check(user, resource, action string, opts CheckOptions) core.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checkLocked(user, resource, action, opts)
}

func (e *Engine) checkLocked(user, resource, action string, opts CheckOptions) core.Decision {
	start := time.Now()

	var ctxMap map[string]any
	if opts.Context != nil {
		ctxMap = opts.Context.ToMap()
	}

	e.emit(events.PermissionCheckBefore, map[string]any{"user": user, "resource": resource, "action": action})

	var key string
	if e.dcache != nil && !opts.SkipCache {
		key = cache.Key(user, resource, action, ctxMap)
		if d, ok := e.dcache.Get(key); ok {
			e.finish(user, resource, action, d, ctxMap, start)
			return d
		}
	}

	d := e.decide(user, resource, action, ctxMap)
	d.Duration = time.Since(start)

	// A decision sourced from the temporary overlay is never cached: a
	// one-time grant is consumed as part of producing it, and caching the
	// resulting allow would let a second read reuse it past consumption
	// until some unrelated mutation happened to invalidate the entry.
	if e.dcache != nil && !opts.SkipCache && d.Source != "temporary" {
		if key == "" {
			key = cache.Key(user, resource, action, ctxMap)
		}
		e.dcache.Set(key, d)
	}

	e.finish(user, resource, action, d, ctxMap, start)
	return d
}

// decide runs steps 2-6 of the pipeline: temporary overlay, RBAC, ABAC,
// policy, default deny. The cache (step 1) is handled by the caller since
// only a miss reaches here.
func (e *Engine) decide(user, resource, action string, ctxMap map[string]any) core.Decision {
	if g, ok := e.temp.Match(user, resource, action); ok {
		return core.Decision{
			Allowed:      true,
			MatchedGrant: g.ID,
			Reason:       "matched temporary permission",
			Source:       "temporary",
		}
	}

	if d := e.roles.Check(user, resource, action); d.Allowed {
		return d
	}

	if ctxMap != nil {
		subjectType := "user"
		if subj, ok := ctxMap["subject"].(map[string]any); ok {
			if st, ok := subj["type"].(string); ok && st != "" {
				subjectType = st
			}
		}
		// abac.Engine.Decide sets a Reason on an allow only for its
		// non-strict no-match fallback, which is not a rule match.
		if d := e.abacEng.Decide(subjectType, action, ctxMap); d.Allowed && d.Reason == "" {
			return d
		}
	}

	if d := e.policies.Decide(user, resource, action, ctxMap); d.Allowed {
		return d
	}

	if e.cfg.DefaultDeny {
		return core.Decision{Allowed: false, Reason: "default deny: no rbac, abac or policy match", Source: "default"}
	}
	return core.Decision{Allowed: true, Reason: "default allow: no rbac, abac or policy match", Source: "default"}
}

// finish performs the pipeline's shared post-decision side effects:
// monitor recording (always), the after-check event, and an audit write
// when enabled.
func (e *Engine) finish(user, resource, action string, d core.Decision, ctxMap map[string]any, start time.Time) {
	e.mon.Record(user, resource, action, d.Allowed, time.Since(start), d.CacheHit)
	e.emit(events.PermissionCheckAfter, d)

	if e.audit != nil {
		entry := Entry{Timestamp: time.Now(), User: user, Resource: resource, Action: action, Decision: d, Context: ctxMap}
		e.audit.dispatch(entry)
	}
}

// CheckPermission is a convenience over Check taking a canonical
// "resource:action" permission string.
func (e *Engine) CheckPermission(user, permission string) (bool, error) {
	grant, err := core.ParsePermission(permission)
	if err != nil {
		return false, err
	}
	return e.Check(user, grant.Resource, grant.Action, CheckOptions{}).Allowed, nil
}

// CheckRequest is a single request within a CheckMultiple batch.
type CheckRequest struct {
	Resource string
	Action   string
	Options  CheckOptions
}

// CheckMultiple evaluates every request independently, each through the
// full pipeline, in order.
func (e *Engine) CheckMultiple(user string, reqs []CheckRequest) []core.Decision {
	out := make([]core.Decision, len(reqs))
	for i, r := range reqs {
		out[i] = e.Check(user, r.Resource, r.Action, r.Options)
	}
	return out
}

// CheckAny reports whether any of reqs is allowed for user.
func (e *Engine) CheckAny(user string, reqs []CheckRequest) bool {
	for _, r := range reqs {
		if e.Check(user, r.Resource, r.Action, r.Options).Allowed {
			return true
		}
	}
	return false
}

// CheckAll reports whether every one of reqs is allowed for user.
func (e *Engine) CheckAll(user string, reqs []CheckRequest) bool {
	for _, r := range reqs {
		if !e.Check(user, r.Resource, r.Action, r.Options).Allowed {
			return false
		}
	}
	return true
}
