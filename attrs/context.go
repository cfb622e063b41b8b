// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package attrs builds and compares the decision context: the composed
// record of subject, resource, environment and action that the ABAC and
// policy engines evaluate conditions against.
package attrs

import "time"

// SubjectContext describes the authenticated principal making the request.
type SubjectContext struct {
	UserID     string
	Type       string
	Attributes map[string]any
	Roles      []string
}

// ResourceContext describes the object the action targets.
type ResourceContext struct {
	Type       string
	ID         string
	Attributes map[string]any
}

// EnvironmentContext describes ambient conditions of the request.
type EnvironmentContext struct {
	Timestamp time.Time
	IP        string
	Device    string
	Name      string
}

// Context is the full decision context composed for a single check.
type Context struct {
	Subject     SubjectContext
	Resource    ResourceContext
	Environment EnvironmentContext
	Action      string
}

// NewUserContext is a constructor helper shaping a common subject context so
// callers never hand-assemble a malformed one.
func NewUserContext(userID string, attrs map[string]any, roles ...string) SubjectContext {
	return SubjectContext{UserID: userID, Type: "user", Attributes: attrs, Roles: roles}
}

// NewResourceContext shapes a resource sub-context.
func NewResourceContext(typ, id string, attrs map[string]any) ResourceContext {
	return ResourceContext{Type: typ, ID: id, Attributes: attrs}
}

// NewEnvironmentContext shapes an environment sub-context. A zero Timestamp
// is resolved to time.Now() by ToMap.
func NewEnvironmentContext(ip, device, name string) EnvironmentContext {
	return EnvironmentContext{IP: ip, Device: device, Name: name}
}

// ToMap renders the context into the nested map[string]any shape the
// condition evaluator resolves dotted paths against (e.g. "subject.id",
// "resource.attributes.ownerId", "environment.ip", "action").
func (c Context) ToMap() map[string]any {
	ts := c.Environment.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return map[string]any{
		"subject": map[string]any{
			"id":         c.Subject.UserID,
			"type":       c.Subject.Type,
			"attributes": toAnyMap(c.Subject.Attributes),
			"roles":      toAnySlice(c.Subject.Roles),
		},
		"resource": map[string]any{
			"type":       c.Resource.Type,
			"id":         c.Resource.ID,
			"attributes": toAnyMap(c.Resource.Attributes),
		},
		"environment": map[string]any{
			"timestamp": ts,
			"ip":        c.Environment.IP,
			"device":    c.Environment.Device,
			"name":      c.Environment.Name,
		},
		"action": c.Action,
	}
}

func toAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
