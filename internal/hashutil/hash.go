// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package hashutil produces stable, order-independent hashes of decision
// contexts for use as the optional fourth segment of a cache key.
package hashutil

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// Stable returns a short hex digest of v that is identical for any two
// values that are structurally equal, regardless of map key insertion
// order. It canonicalizes maps by sorting keys before writing them into
// the hash, so {"a":1,"b":2} and {"b":2,"a":1} hash identically.
func Stable(v any) string {
	h := fnv.New64a()
	writeCanonical(h, v)
	return fmt.Sprintf("%016x", h.Sum64())
}

func writeCanonical(h interface{ Write([]byte) (int, error) }, v any) {
	switch t := v.(type) {
	case nil:
		_, _ = h.Write([]byte("n"))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		_, _ = h.Write([]byte("{"))
		for _, k := range keys {
			_, _ = h.Write([]byte(k))
			_, _ = h.Write([]byte(":"))
			writeCanonical(h, t[k])
			_, _ = h.Write([]byte(","))
		}
		_, _ = h.Write([]byte("}"))
	case []any:
		_, _ = h.Write([]byte("["))
		for _, e := range t {
			writeCanonical(h, e)
			_, _ = h.Write([]byte(","))
		}
		_, _ = h.Write([]byte("]"))
	default:
		_, _ = h.Write([]byte(fmt.Sprintf("%T=%v", t, t)))
	}
}
