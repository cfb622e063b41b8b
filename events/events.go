// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package events implements the engine's closed-set pub-sub: On/Once/Off
// over a fixed list of lifecycle event names. Handler failures are caught
// and logged; they never affect a decision and never block later handlers.
package events

import (
	"log/slog"
	"sync"
)

// Name identifies one of the engine's lifecycle events. The set is closed:
// Emit on an unrecognized name is a no-op logged at debug level, so a typo
// in a host's Emit call fails quietly rather than panicking mid-decision.
type Name string

// The closed set of event names the engine may emit.
const (
	PermissionCheckBefore     Name = "permission:check:before"
	PermissionCheckAfter      Name = "permission:check:after"
	RoleAssigned              Name = "role:assigned"
	RoleUnassigned            Name = "role:unassigned"
	PermissionGranted         Name = "permission:granted"
	PermissionRevoked         Name = "permission:revoked"
	PermissionTemporaryGrant  Name = "permission:temporary:granted"
	PermissionTemporaryRevoke Name = "permission:temporary:revoked"
	PermissionOneTimeGrant    Name = "permission:one-time:granted"
)

var knownEvents = map[Name]struct{}{
	PermissionCheckBefore: {}, PermissionCheckAfter: {},
	RoleAssigned: {}, RoleUnassigned: {},
	PermissionGranted: {}, PermissionRevoked: {},
	PermissionTemporaryGrant: {}, PermissionTemporaryRevoke: {},
	PermissionOneTimeGrant: {},
}

// Handler receives an event's payload. The payload's shape is
// event-specific (e.g. a core.Decision for permission:check:after, a
// (user, role) pair for role:assigned); handlers type-assert as needed.
type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
	once    bool
}

// Bus is the engine's event dispatcher. Its subscription table is guarded
// by its own mutex.
type Bus struct {
	mu     sync.Mutex
	subs   map[Name][]*subscription
	nextID uint64
	logger *slog.Logger
}

// New creates an empty Bus. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{subs: make(map[Name][]*subscription), logger: logger}
}

// subscriptionHandle lets a caller unsubscribe a specific On/Once
// registration via Off, matching by handler identity is unreliable in Go
// (funcs aren't comparable), so Off instead takes the handle returned here.
type subscriptionHandle struct {
	event Name
	id    uint64
}

// On registers handler for every future emission of event. It returns a
// handle that Off accepts to unregister exactly this registration.
func (b *Bus) On(event Name, handler Handler) any {
	return b.add(event, handler, false)
}

// Once registers handler for exactly the next emission of event, after
// which it is automatically unregistered.
func (b *Bus) Once(event Name, handler Handler) any {
	return b.add(event, handler, true)
}

func (b *Bus) add(event Name, handler Handler, once bool) any {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{id: b.nextID, handler: handler, once: once}
	b.subs[event] = append(b.subs[event], sub)
	return subscriptionHandle{event: event, id: sub.id}
}

// Off unregisters a handle previously returned by On or Once. Unregistering
// an already-fired Once or an unknown handle is a no-op.
func (b *Bus) Off(handle any) {
	h, ok := handle.(subscriptionHandle)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[h.event]
	for i, s := range subs {
		if s.id == h.id {
			b.subs[h.event] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Emit dispatches payload to every handler registered for event, in
// registration order. Each handler is isolated: a panic or error within a
// handler is recovered, logged, and never propagates to the caller or
// blocks subsequent handlers. Once-handlers are removed after firing.
func (b *Bus) Emit(event Name, payload any) {
	if _, known := knownEvents[event]; !known {
		b.logger.Debug("emit on unrecognized event name", "event", string(event))
		return
	}

	b.mu.Lock()
	subs := append([]*subscription(nil), b.subs[event]...)
	b.mu.Unlock()

	var toRemove []uint64
	for _, s := range subs {
		b.dispatch(event, s, payload)
		if s.once {
			toRemove = append(toRemove, s.id)
		}
	}

	if len(toRemove) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	remaining := b.subs[event][:0]
	removeSet := make(map[uint64]bool, len(toRemove))
	for _, id := range toRemove {
		removeSet[id] = true
	}
	for _, s := range b.subs[event] {
		if !removeSet[s.id] {
			remaining = append(remaining, s)
		}
	}
	b.subs[event] = remaining
}

func (b *Bus) dispatch(event Name, s *subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "event", string(event), "panic", r)
		}
	}()
	s.handler(payload)
}
