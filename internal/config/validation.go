// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Path is a path to a config field for error reporting, building strings
// like "cache.max_size" or "policies[2].resolution".
type Path struct {
	segments []string
}

// NewPath creates a path rooted at name.
func NewPath(root string) *Path {
	return &Path{segments: []string{root}}
}

// Child returns a new path with a child segment appended.
func (p *Path) Child(name string) *Path {
	segs := make([]string, len(p.segments)+1)
	copy(segs, p.segments)
	segs[len(p.segments)] = name
	return &Path{segments: segs}
}

// Index returns a new path with an array index appended to the last
// segment, e.g. path.Child("policies").Index(0) -> "policies[0]".
func (p *Path) Index(i int) *Path {
	if len(p.segments) == 0 {
		return &Path{segments: []string{fmt.Sprintf("[%d]", i)}}
	}
	segs := make([]string, len(p.segments))
	copy(segs, p.segments)
	segs[len(segs)-1] = fmt.Sprintf("%s[%d]", segs[len(segs)-1], i)
	return &Path{segments: segs}
}

// String returns the dot-separated path.
func (p *Path) String() string {
	return strings.Join(p.segments, ".")
}

// FieldError is a validation error anchored to one config field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every FieldError found during one validation
// pass, rather than failing on the first.
type ValidationErrors []*FieldError

func (ve ValidationErrors) Error() string {
	var b strings.Builder
	for i, e := range ve {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// OrNil returns nil when ve is empty, otherwise ve itself as an error.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// Required reports that the field at path was not set.
func Required(path *Path) *FieldError {
	return &FieldError{Field: path.String(), Message: "is required"}
}

// Invalid reports a custom validation failure at path.
func Invalid(path *Path, msg string) *FieldError {
	return &FieldError{Field: path.String(), Message: msg}
}

// MustBeInRange returns an error if value falls outside [min, max].
func MustBeInRange[T cmp.Ordered](path *Path, value, min, max T) *FieldError {
	if value < min || value > max {
		return Invalid(path, fmt.Sprintf("must be between %v and %v", min, max))
	}
	return nil
}

// MustBeNonNegative returns an error if value is negative.
func MustBeNonNegative[T cmp.Ordered](path *Path, value T) *FieldError {
	var zero T
	if value < zero {
		return Invalid(path, "must be non-negative")
	}
	return nil
}

// MustBeGreaterThan returns an error if value is not greater than min.
func MustBeGreaterThan[T cmp.Ordered](path *Path, value, min T) *FieldError {
	if value <= min {
		return Invalid(path, fmt.Sprintf("must be greater than %v", min))
	}
	return nil
}

// MustBeOneOf returns an error if value is not among allowed.
func MustBeOneOf(path *Path, value string, allowed []string) *FieldError {
	if slices.Contains(allowed, value) {
		return nil
	}
	return Invalid(path, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

// MustNotBeEmpty returns an error if value is the empty string.
func MustNotBeEmpty(path *Path, value string) *FieldError {
	if value == "" {
		return Invalid(path, "must not be empty")
	}
	return nil
}
