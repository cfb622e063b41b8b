// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"reflect"
	"strings"
)

// CustomMatcher compares an actual value against an expected one for a
// specific attribute name, taking precedence over the default typed
// comparison.
type CustomMatcher func(actual, expected any) bool

// Matcher compares typed attribute values (string, number, boolean, date,
// array, object) with configurable string-comparison relaxations.
type Matcher struct {
	CaseInsensitive bool
	PartialString   bool
	custom          map[string]CustomMatcher
}

// NewMatcher creates a Matcher with default (exact, case-sensitive) string
// comparison.
func NewMatcher() *Matcher {
	return &Matcher{custom: make(map[string]CustomMatcher)}
}

// RegisterCustomMatcher installs a comparator that takes precedence over
// the default typed comparison for the named attribute.
func (m *Matcher) RegisterCustomMatcher(attribute string, fn CustomMatcher) {
	m.custom[attribute] = fn
}

// Match compares actual to expected for the named attribute.
func (m *Matcher) Match(attribute string, actual, expected any) bool {
	if fn, ok := m.custom[attribute]; ok {
		return fn(actual, expected)
	}
	return m.defaultMatch(actual, expected)
}

func (m *Matcher) defaultMatch(actual, expected any) bool {
	as, aIsStr := actual.(string)
	es, eIsStr := expected.(string)
	if aIsStr && eIsStr {
		return m.matchStrings(as, es)
	}
	return reflect.DeepEqual(actual, expected)
}

func (m *Matcher) matchStrings(actual, expected string) bool {
	a, e := actual, expected
	if m.CaseInsensitive {
		a, e = strings.ToLower(a), strings.ToLower(e)
	}
	if m.PartialString {
		return strings.Contains(a, e)
	}
	return a == e
}
