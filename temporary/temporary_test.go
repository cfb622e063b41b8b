// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package temporary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantTempMatchesWhileLive(t *testing.T) {
	o := New()
	id, err := o.GrantTemp("carol", "sensitive", "read", time.Now().Add(time.Hour), GrantOptions{})
	require.NoError(t, err)

	g, ok := o.Match("carol", "sensitive", "read")
	require.True(t, ok)
	assert.Equal(t, id, g.ID)

	// Non-one-time grants are not consumed by a match.
	_, ok = o.Match("carol", "sensitive", "read")
	assert.True(t, ok, "expected a regular temporary grant to keep matching")
}

func TestExpiredGrantDoesNotMatch(t *testing.T) {
	o := New()
	_, err := o.GrantTemp("carol", "sensitive", "read", time.Now().Add(-time.Second), GrantOptions{})
	require.NoError(t, err)

	_, ok := o.Match("carol", "sensitive", "read")
	assert.False(t, ok, "expected expired grant not to match")
}

func TestOneTimeGrantConsumedOnMatch(t *testing.T) {
	o := New()
	_, err := o.GrantOnce("dan", "report", "download", time.Time{}, GrantOptions{})
	require.NoError(t, err)

	g, ok := o.Match("dan", "report", "download")
	require.True(t, ok)
	assert.True(t, g.OneTime)
	assert.Equal(t, 1, g.UsedCount)

	_, ok = o.Match("dan", "report", "download")
	assert.False(t, ok, "expected second match on a one-time grant to fail")
	assert.Equal(t, 0, o.Len(), "expected consumed grant to be removed")
}

func TestGrantOnceDefaultsExpiration(t *testing.T) {
	o := New()
	id, err := o.GrantOnce("dan", "report", "download", time.Time{}, GrantOptions{})
	require.NoError(t, err)

	due := o.DueForNotification(time.Now(), DefaultOneTimeTTL+time.Minute)
	assert.Contains(t, due, id)
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	o := New()
	_, err := o.GrantTemp("eve", "doc", "read", time.Now().Add(-time.Minute), GrantOptions{})
	require.NoError(t, err)
	liveID, err := o.GrantTemp("eve", "doc", "write", time.Now().Add(time.Hour), GrantOptions{})
	require.NoError(t, err)

	removed := o.Sweep(time.Now())
	assert.Len(t, removed, 1)
	assert.Equal(t, 1, o.Len())

	grants := o.ForUser("eve")
	require.Len(t, grants, 1)
	assert.Equal(t, liveID, grants[0].ID)
}

func TestRevokeRemovesRegardlessOfState(t *testing.T) {
	o := New()
	id, err := o.GrantTemp("frank", "doc", "read", time.Now().Add(time.Hour), GrantOptions{})
	require.NoError(t, err)
	require.NoError(t, o.Revoke(id))

	_, ok := o.Match("frank", "doc", "read")
	assert.False(t, ok, "expected revoked grant not to match")
}

func TestRevokeUnknownIDErrors(t *testing.T) {
	o := New()
	assert.Error(t, o.Revoke("does-not-exist"))
}
