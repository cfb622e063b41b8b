// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package temporary implements the temporary/one-time permission overlay
// consulted before RBAC on every decision: time-bounded grants that vanish
// at their expiration instant or, for one-time entries, on first
// successful match.
package temporary

import (
	"crypto/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/wardenhq/warden/core"
)

// DefaultOneTimeTTL is the expiration used by GrantOnce when the caller
// supplies a zero time.
const DefaultOneTimeTTL = 24 * time.Hour

// DefaultSweepInterval and DefaultNotifyBefore are the overlay's cleanup
// cadence and the lead time used to flag soon-to-expire grants.
const (
	DefaultSweepInterval = 60 * time.Second
	DefaultNotifyBefore  = 300 * time.Second
)

// State names a temporary entry's position in its lifecycle.
type State string

const (
	StateActive   State = "active"
	StateExpired  State = "expired"
	StateConsumed State = "consumed"
	StateRemoved  State = "removed"
)

// Grant is a single temporary or one-time permission entry.
type Grant struct {
	ID        string
	UserID    string
	Resource  string
	Action    string
	ExpiresAt time.Time
	OneTime   bool
	UsedCount int
	CreatedBy string
	Metadata  map[string]any
	State     State
}

var (
	entropySource     = ulid.Monotonic(rand.Reader, 0)
	entropySourceLock sync.Mutex
)

func newID() string {
	entropySourceLock.Lock()
	defer entropySourceLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropySource).String()
}

// Overlay tracks every live temporary/one-time grant plus an auxiliary
// expiration index for the cleanup sweep. It is safe for concurrent use:
// every exported method takes the overlay's own lock.
type Overlay struct {
	mu         sync.Mutex
	grants     map[string]*Grant
	expiration map[string]time.Time // id -> expires_at, mirrors grants for sweep ordering
	byUser     map[string]map[string]struct{}
}

// New creates an empty overlay.
func New() *Overlay {
	return &Overlay{
		grants:     make(map[string]*Grant),
		expiration: make(map[string]time.Time),
		byUser:     make(map[string]map[string]struct{}),
	}
}

// GrantOptions carries the optional fields accepted by GrantTemp/GrantOnce.
type GrantOptions struct {
	CreatedBy string
	Metadata  map[string]any
}

// GrantTemp creates a time-bounded permission for user, expiring at
// expiresAt.
func (o *Overlay) GrantTemp(user, resource, action string, expiresAt time.Time, opts GrantOptions) (string, error) {
	return o.grant(user, resource, action, expiresAt, false, opts)
}

// GrantOnce creates a one-time permission. A zero expiresAt defaults to
// DefaultOneTimeTTL from now.
func (o *Overlay) GrantOnce(user, resource, action string, expiresAt time.Time, opts GrantOptions) (string, error) {
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(DefaultOneTimeTTL)
	}
	return o.grant(user, resource, action, expiresAt, true, opts)
}

func (o *Overlay) grant(user, resource, action string, expiresAt time.Time, oneTime bool, opts GrantOptions) (string, error) {
	if user == "" || resource == "" || action == "" {
		return "", oops.Code(core.CodeInvalidConfig).Errorf("user, resource and action are required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	id := newID()
	g := &Grant{
		ID:        id,
		UserID:    user,
		Resource:  resource,
		Action:    action,
		ExpiresAt: expiresAt,
		OneTime:   oneTime,
		CreatedBy: opts.CreatedBy,
		Metadata:  opts.Metadata,
		State:     StateActive,
	}
	o.grants[id] = g
	o.expiration[id] = expiresAt
	if o.byUser[user] == nil {
		o.byUser[user] = make(map[string]struct{})
	}
	o.byUser[user][id] = struct{}{}
	return id, nil
}

// Match looks for a live, unexpired grant covering (resource, action) for
// user, applying the same wildcard semantics as an RBAC grant. A matching
// one-time entry is atomically removed and its used-count bumped as part
// of the match.
func (o *Overlay) Match(user, resource, action string) (Grant, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := time.Now()
	for id := range o.byUser[user] {
		g, ok := o.grants[id]
		if !ok || g.State != StateActive {
			continue
		}
		if !now.Before(g.ExpiresAt) {
			continue
		}
		pg := core.PermissionGrant{Resource: g.Resource, Action: g.Action}
		if !pg.Matches(resource, action) {
			continue
		}

		snapshot := *g
		if g.OneTime {
			g.UsedCount++
			g.State = StateConsumed
			snapshot = *g
			o.removeUnlocked(id)
		}
		return snapshot, true
	}
	return Grant{}, false
}

// Revoke removes a grant by id regardless of its current state.
func (o *Overlay) Revoke(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.grants[id]; !ok {
		return oops.Code(core.CodeInvalidConfig).With("id", id).Errorf("temporary grant %q not found", id)
	}
	o.removeUnlocked(id)
	return nil
}

func (o *Overlay) removeUnlocked(id string) {
	g, ok := o.grants[id]
	if !ok {
		return
	}
	delete(o.grants, id)
	delete(o.expiration, id)
	if set, ok := o.byUser[g.UserID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(o.byUser, g.UserID)
		}
	}
}

// Sweep removes every grant whose expiration instant has passed, marking it
// Expired before the removal for callers that want to log the transition.
// It returns the ids removed.
func (o *Overlay) Sweep(now time.Time) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var expired []string
	for id, exp := range o.expiration {
		if !now.Before(exp) {
			expired = append(expired, id)
		}
	}
	sort.Strings(expired)
	for _, id := range expired {
		if g := o.grants[id]; g != nil {
			g.State = StateExpired
		}
		o.removeUnlocked(id)
	}
	return expired
}

// DueForNotification returns the ids of active grants expiring within
// window from now, for callers wiring a soon-to-expire callback.
func (o *Overlay) DueForNotification(now time.Time, window time.Duration) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var due []string
	threshold := now.Add(window)
	for id, exp := range o.expiration {
		if exp.After(now) && !exp.After(threshold) {
			due = append(due, id)
		}
	}
	sort.Strings(due)
	return due
}

// ForUser returns every live grant currently held by user, for
// observability and cache-invalidation callers.
func (o *Overlay) ForUser(user string) []Grant {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []Grant
	for id := range o.byUser[user] {
		if g, ok := o.grants[id]; ok {
			out = append(out, *g)
		}
	}
	return out
}

// Len reports the number of live grants tracked by the overlay.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.grants)
}
