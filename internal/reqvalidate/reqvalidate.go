// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package reqvalidate runs struct-level validation over mutation request
// types (role options, ability rules, policies, permission grants) before
// they reach a store, the way internal/pipeline/component validates
// component specs elsewhere in the stack.
package reqvalidate

import (
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/wardenhq/warden/core"
)

var instance = validator.New(validator.WithRequiredStructEnabled())

// Struct validates s against its `validate` struct tags, returning
// core.ErrInvalidConfig (wrapped with the failing fields attached) when s
// does not satisfy them.
func Struct(s any) error {
	if err := instance.Struct(s); err != nil {
		return oops.Code(core.CodeInvalidConfig).With("validationError", err.Error()).Wrap(core.ErrInvalidConfig)
	}
	return nil
}
