// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// equalValues reports structural equality for primitives and, via
// cmp.Equal, for arrays/maps — the spec allows comparing against literal
// structured values, so a deep comparison is required rather than
// reference identity.
func equalValues(a, b any) bool {
	if _, isUndef := a.(undefined); isUndef {
		return false
	}
	return cmp.Equal(a, b)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func compareNumeric(op Operator, a, b any) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if !aok || !bok {
		return false
	}
	switch op {
	case Gt:
		return af > bf
	case Gte:
		return af >= bf
	case Lt:
		return af < bf
	case Lte:
		return af <= bf
	default:
		return false
	}
}

func membership(actual, expected any) bool {
	list, ok := expected.([]any)
	if !ok {
		return false
	}
	if _, isUndef := actual.(undefined); isUndef {
		return false
	}
	for _, item := range list {
		if cmp.Equal(actual, item) {
			return true
		}
	}
	return false
}

func contains(actual, expected any) bool {
	if _, isUndef := actual.(undefined); isUndef {
		return false
	}
	switch a := actual.(type) {
	case []any:
		for _, item := range a {
			if cmp.Equal(item, expected) {
				return true
			}
		}
		return false
	case string:
		s, ok := expected.(string)
		if !ok {
			return false
		}
		return strings.Contains(a, s)
	default:
		return false
	}
}

func stringRelation(actual, expected any, rel func(s, p string) bool) bool {
	s, ok := toString(actual)
	if !ok {
		return false
	}
	p, ok := toString(expected)
	if !ok {
		return false
	}
	return rel(s, p)
}

func hasPrefix(s, p string) bool { return strings.HasPrefix(s, p) }
func hasSuffix(s, p string) bool { return strings.HasSuffix(s, p) }

// toString coerces primitive values to string for lexical/regex operators.
// It refuses to coerce the undefined sentinel or composite values.
func toString(v any) (string, bool) {
	switch t := v.(type) {
	case undefined:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}
