// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package warden is an embeddable, in-process authorization decision
// engine combining role-based access control, attribute-based access
// control and a policy engine behind a single Check call, backed by a
// decision cache and a temporary/one-time permission overlay.
package warden

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/wardenhq/warden/abac"
	"github.com/wardenhq/warden/cache"
	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/events"
	"github.com/wardenhq/warden/monitor"
	"github.com/wardenhq/warden/policy"
	"github.com/wardenhq/warden/rbac"
	"github.com/wardenhq/warden/snapshot"
	"github.com/wardenhq/warden/temporary"
	"github.com/wardenhq/warden/templates"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheConfig mirrors cache.Options at the engine's construction boundary.
type CacheConfig struct {
	MaxSize int
	TTL     time.Duration
}

// Config is the engine's programmatic, construction-time configuration.
// There is no required on-disk or environment format; a host embedding
// warden decides how (or whether) to source these fields from its own
// config loader — see internal/config for the loader used by cmd/wardenctl.
type Config struct {
	EnableCache  bool
	Cache        CacheConfig
	EnableAudit  bool
	EnableEvents bool
	Strict       bool
	DefaultDeny  bool
	MaxDepth     int

	AuditSink        AuditSink
	PolicyResolution core.ConflictResolution
	EvaluationBudget int
	Logger           *slog.Logger
	Registerer       prometheus.Registerer
	MonitorOptions   monitor.Options
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		EnableCache:  true,
		Cache:        CacheConfig{MaxSize: cache.DefaultMaxSize, TTL: cache.DefaultTTL},
		EnableAudit:  false,
		EnableEvents: true,
		Strict:       false,
		DefaultDeny:  true,
		MaxDepth:     rbac.DefaultMaxDepth,
	}
}

// Engine is a single authorization decision engine instance: one role
// graph, one ABAC engine, one policy engine, one decision cache, one
// temporary-permission overlay, one performance monitor, sharing a single
// mutex per spec §5's concurrency model. All mutating and deciding
// operations serialize through that one lock.
type Engine struct {
	mu sync.Mutex

	cfg Config

	roles    *rbac.Graph
	abacEng  *abac.Engine
	policies *policy.Engine
	dcache   *cache.Cache
	temp     *temporary.Overlay
	mon      *monitor.Monitor
	bus      *events.Bus
	audit    *retryingAuditSink

	logger      *slog.Logger
	currentUser string
}

// New constructs an Engine from cfg. A zero-value Config is not valid
// input for production use (it disables cache and events); callers should
// start from DefaultConfig and override only what they need.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = rbac.DefaultMaxDepth
	}

	e := &Engine{
		cfg:      cfg,
		roles:    rbac.New(maxDepth),
		abacEng:  abac.New(cfg.Strict),
		policies: policy.New(policy.Options{DefaultResolution: cfg.PolicyResolution, EvaluationBudget: cfg.EvaluationBudget}),
		temp:     temporary.New(),
		logger:   logger,
	}

	if cfg.EnableCache {
		e.dcache = cache.New(cache.Options{MaxSize: cfg.Cache.MaxSize, TTL: cfg.Cache.TTL})
	}
	if cfg.EnableEvents {
		e.bus = events.New(logger)
	}
	if cfg.EnableAudit && cfg.AuditSink != nil {
		e.audit = newRetryingAuditSink(cfg.AuditSink, logger)
	}

	monOpts := cfg.MonitorOptions
	monOpts.Logger = logger
	monOpts.Registerer = cfg.Registerer
	e.mon = monitor.New(monOpts)

	return e
}

// emit is a nil-safe convenience so call sites don't special-case a
// disabled event bus.
func (e *Engine) emit(name events.Name, payload any) {
	if e.bus == nil {
		return
	}
	e.bus.Emit(name, payload)
}

// On registers handler for event, when eventing is enabled. Returns a
// handle Off accepts, or nil when events are disabled.
func (e *Engine) On(event events.Name, handler events.Handler) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus == nil {
		return nil
	}
	return e.bus.On(event, handler)
}

// Once registers a one-shot handler for event.
func (e *Engine) Once(event events.Name, handler events.Handler) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus == nil {
		return nil
	}
	return e.bus.Once(event, handler)
}

// Off unregisters a handle previously returned by On or Once.
func (e *Engine) Off(handle any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.bus == nil {
		return
	}
	e.bus.Off(handle)
}

// SetCurrentUser installs the ambient user that CurrentUser reports. Not
// used by Check itself
// (which always takes an explicit user); provided for hosts that want a
// request-scoped "current actor" without threading it through every call.
func (e *Engine) SetCurrentUser(user string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentUser = user
}

// ClearCurrentUser clears the ambient current user.
func (e *Engine) ClearCurrentUser() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentUser = ""
}

// CurrentUser returns the ambient current user, or "" if unset.
func (e *Engine) CurrentUser() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentUser
}

// ApplyTemplate applies a built-in seed role set onto the engine's role
// graph.
func (e *Engine) ApplyTemplate(id string, opts templates.ApplyOptions) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return templates.Apply(e.roles, id, opts)
}

// Export produces a full snapshot of the engine's rbac, abac and policy
// stores.
func (e *Engine) Export() snapshot.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot.Export(e.roles, e.abacEng, e.policies, time.Now)
}

// ExportJSON marshals Export's result to JSON.
func (e *Engine) ExportJSON() ([]byte, error) {
	return json.Marshal(e.Export())
}

// ImportSnapshot replaces the engine's rbac, abac and policy stores with
// the contents of s. This is a full replace, never a merge, and drops the
// decision cache to avoid serving stale decisions against the new state.
func (e *Engine) ImportSnapshot(s snapshot.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := snapshot.Import(s, e.roles, e.abacEng, e.policies); err != nil {
		return err
	}
	if e.dcache != nil {
		e.dcache.Clear()
	}
	return nil
}

// ImportJSON decodes, schema-validates and imports a JSON-encoded
// snapshot.
func (e *Engine) ImportJSON(raw []byte) error {
	s, err := snapshot.Decode(raw)
	if err != nil {
		return err
	}
	return e.ImportSnapshot(s)
}

