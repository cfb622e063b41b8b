// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordAccumulatesRollingMetrics(t *testing.T) {
	m := New(Options{})
	m.Record("alice", "doc", "read", true, 100*time.Microsecond, false)
	m.Record("alice", "doc", "write", false, 200*time.Microsecond, true)

	snap := m.Metrics()
	assert.EqualValues(t, 2, snap.Total)
	assert.EqualValues(t, 1, snap.Success)
	assert.EqualValues(t, 1, snap.Fail)
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 1, snap.CacheMisses)
	assert.Equal(t, 100*time.Microsecond, snap.MinDuration)
	assert.Equal(t, 200*time.Microsecond, snap.MaxDuration)
}

func TestSlowQueryCapturedInRing(t *testing.T) {
	m := New(Options{SlowThreshold: time.Microsecond})
	m.Record("bob", "report", "export", true, 5*time.Millisecond, false)

	slow := m.SlowQueries(0)
	assert.Len(t, slow, 1)
	assert.Equal(t, "bob", slow[0].UserID)
}

func TestSlowQueryRingBounded(t *testing.T) {
	m := New(Options{SlowThreshold: time.Microsecond, SlowQueryRing: 3})
	for i := 0; i < 5; i++ {
		m.Record("u", "r", "a", true, time.Millisecond, false)
	}
	assert.Len(t, m.SlowQueries(0), 3)
}

func TestPerformanceTrendDetectsDegradation(t *testing.T) {
	m := New(Options{WindowSize: 10})
	for i := 0; i < 5; i++ {
		m.Record("u", "r", "a", true, time.Microsecond, false)
	}
	for i := 0; i < 5; i++ {
		m.Record("u", "r", "a", true, 10*time.Millisecond, false)
	}
	assert.Equal(t, TrendDegrading, m.PerformanceTrend())
}

func TestCheckHealthFlagsHighMeanDuration(t *testing.T) {
	m := New(Options{})
	m.Record("u", "r", "a", true, 2*time.Millisecond, false)

	h := m.CheckHealth()
	assert.False(t, h.Healthy, "expected unhealthy due to high mean duration")
}

func TestCheckHealthHealthyUnderThresholds(t *testing.T) {
	m := New(Options{})
	m.Record("u", "r", "a", true, 10*time.Microsecond, true)

	h := m.CheckHealth()
	assert.True(t, h.Healthy, "expected healthy snapshot, got issues: %v", h.Issues)
}

func TestGenerateReportComposesAllThree(t *testing.T) {
	m := New(Options{})
	m.Record("u", "r", "a", true, 10*time.Microsecond, true)

	report := m.GenerateReport()
	assert.EqualValues(t, 1, report.Metrics.Total)
	assert.NotEmpty(t, report.Trend)
}
