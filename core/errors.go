// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package core

import "errors"

// Sentinel errors for the mutation API's typed-error taxonomy (spec §7).
// Every wrapped error built with oops.Code(...).Wrap(sentinel) still
// satisfies errors.Is against these, the way the pack wraps sentinels with
// samber/oops for rich context without losing Go's error-chain semantics.
var (
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleAlreadyExists   = errors.New("role already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCircularInheritance = errors.New("circular inheritance")
	ErrInvalidConfig       = errors.New("invalid config")
	ErrInvalidPermission   = errors.New("invalid permission string")
	ErrMaxDepthExceeded    = errors.New("role graph traversal exceeds maximum depth")
)

// Error codes attached via oops.Code for structured logging/telemetry.
const (
	CodeRoleNotFound        = "ROLE_NOT_FOUND"
	CodeRoleAlreadyExists   = "ROLE_ALREADY_EXISTS"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodePermissionNotFound  = "PERMISSION_NOT_FOUND"
	CodeCircularInheritance = "CIRCULAR_INHERITANCE"
	CodeInvalidConfig       = "INVALID_CONFIG"
	CodeInvalidPermission   = "INVALID_PERMISSION"
)

// ParsePermission splits a canonical "resource:action" string into its
// grant. Returns ErrInvalidPermission (wrapped) when the string does not
// contain exactly one separator or either side is empty.
func ParsePermission(s string) (PermissionGrant, error) {
	idx := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			if idx != -1 {
				return PermissionGrant{}, ErrInvalidPermission
			}
			idx = i
		}
	}
	if idx <= 0 || idx == len(s)-1 {
		return PermissionGrant{}, ErrInvalidPermission
	}
	resource, action := s[:idx], s[idx+1:]
	if resource == "" || action == "" {
		return PermissionGrant{}, ErrInvalidPermission
	}
	return PermissionGrant{Resource: resource, Action: action}, nil
}
