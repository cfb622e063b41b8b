// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor tracks rolling performance metrics for the decision
// pipeline: totals, durations, cache effectiveness, a bounded slow-query
// ring, trend analysis and health checks. It optionally projects the same
// numbers onto Prometheus collectors when a registerer is supplied.
package monitor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Defaults for the rolling window, slow-query ring, and throttling.
const (
	DefaultWindowSize       = 100
	DefaultSlowQueryRing    = 100
	DefaultSlowThreshold    = time.Millisecond
	DefaultWarnThrottle     = 5 * time.Second
	healthCheckMinProbes    = 100
	healthMeanThreshold     = 500 * time.Microsecond
	healthMaxThreshold      = 10 * time.Millisecond
	healthCacheHitFloor     = 0.70
	healthSlowRateCeiling   = 0.05
	trendImprovingThreshold = -0.10
	trendDegradingThreshold = 0.10
)

// SlowQuery is a single retained record of a check that exceeded the
// configured slow-query threshold.
type SlowQuery struct {
	Timestamp time.Time
	UserID    string
	Resource  string
	Action    string
	Duration  time.Duration
	CacheHit  bool
}

// Options configures a Monitor. A nil Logger or Registerer disables the
// corresponding side effect without requiring the caller to special-case
// it.
type Options struct {
	WindowSize    int
	SlowQueryRing int
	SlowThreshold time.Duration
	WarnThrottle  time.Duration
	Logger        *slog.Logger
	Registerer    prometheus.Registerer
}

// Monitor is a single engine's performance tracker. Not safe for concurrent
// use without external synchronization; callers already hold the engine
// lock for the duration of a decision.
type Monitor struct {
	windowSize    int
	slowRingSize  int
	slowThreshold time.Duration
	warnThrottle  time.Duration
	logger        *slog.Logger

	total, success, fail int64
	cacheHits, cacheMiss int64
	cumulative           time.Duration
	min, max             time.Duration

	recent    []time.Duration // FIFO bounded window
	slowRing  []SlowQuery     // FIFO bounded ring
	slowCount int64
	lastWarn  time.Time

	metrics *promMetrics
}

// New creates a Monitor. Zero-value fields in opts fall back to package
// defaults.
func New(opts Options) *Monitor {
	windowSize := opts.WindowSize
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	ringSize := opts.SlowQueryRing
	if ringSize <= 0 {
		ringSize = DefaultSlowQueryRing
	}
	threshold := opts.SlowThreshold
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}
	throttle := opts.WarnThrottle
	if throttle <= 0 {
		throttle = DefaultWarnThrottle
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		windowSize:    windowSize,
		slowRingSize:  ringSize,
		slowThreshold: threshold,
		warnThrottle:  throttle,
		logger:        logger,
		metrics:       newPromMetrics(opts.Registerer),
	}
}

// Record ingests a single decision's outcome into the rolling metrics, the
// slow-query ring (when applicable), and the Prometheus projection (when
// configured).
func (m *Monitor) Record(userID, resource, action string, allowed bool, duration time.Duration, cacheHit bool) {
	m.total++
	if allowed {
		m.success++
	} else {
		m.fail++
	}
	if cacheHit {
		m.cacheHits++
	} else {
		m.cacheMiss++
	}

	m.cumulative += duration
	if m.total == 1 || duration < m.min {
		m.min = duration
	}
	if duration > m.max {
		m.max = duration
	}

	m.recent = append(m.recent, duration)
	if len(m.recent) > m.windowSize {
		m.recent = m.recent[1:]
	}

	if duration > m.slowThreshold {
		m.slowCount++
		rec := SlowQuery{Timestamp: time.Now(), UserID: userID, Resource: resource, Action: action, Duration: duration, CacheHit: cacheHit}
		m.slowRing = append(m.slowRing, rec)
		if len(m.slowRing) > m.slowRingSize {
			m.slowRing = m.slowRing[1:]
		}
		m.warnSlow(rec)
	}

	result := "deny"
	if allowed {
		result = "allow"
	}
	var hitRate float64
	if probes := m.cacheHits + m.cacheMiss; probes > 0 {
		hitRate = float64(m.cacheHits) / float64(probes)
	}
	m.metrics.observe(result, duration, duration > m.slowThreshold, hitRate)
}

func (m *Monitor) warnSlow(rec SlowQuery) {
	now := time.Now()
	if !m.lastWarn.IsZero() && now.Sub(m.lastWarn) < m.warnThrottle {
		return
	}
	m.lastWarn = now
	m.logger.Warn("slow permission check",
		"user", rec.UserID, "resource", rec.Resource, "action", rec.Action,
		"duration", rec.Duration, "cacheHit", rec.CacheHit)
}

// Metrics is a point-in-time snapshot of the rolling counters.
type Metrics struct {
	Total         int64         `json:"total"`
	Success       int64         `json:"success"`
	Fail          int64         `json:"fail"`
	CacheHits     int64         `json:"cacheHits"`
	CacheMisses   int64         `json:"cacheMisses"`
	MinDuration   time.Duration `json:"minDuration"`
	MaxDuration   time.Duration `json:"maxDuration"`
	MeanDuration  time.Duration `json:"meanDuration"`
	RecentAverage time.Duration `json:"recentAverage"`
	SlowCount     int64         `json:"slowCount"`
	CacheHitRate  float64       `json:"cacheHitRate"`
}

// Metrics returns the current rolling-metrics snapshot.
func (m *Monitor) Metrics() Metrics {
	var mean time.Duration
	if m.total > 0 {
		mean = m.cumulative / time.Duration(m.total)
	}
	var recentAvg time.Duration
	if len(m.recent) > 0 {
		var sum time.Duration
		for _, d := range m.recent {
			sum += d
		}
		recentAvg = sum / time.Duration(len(m.recent))
	}
	var hitRate float64
	if probes := m.cacheHits + m.cacheMiss; probes > 0 {
		hitRate = float64(m.cacheHits) / float64(probes)
	}
	return Metrics{
		Total: m.total, Success: m.success, Fail: m.fail,
		CacheHits: m.cacheHits, CacheMisses: m.cacheMiss,
		MinDuration: m.min, MaxDuration: m.max, MeanDuration: mean,
		RecentAverage: recentAvg, SlowCount: m.slowCount, CacheHitRate: hitRate,
	}
}

// SlowQueries returns up to limit of the most recent slow-query records,
// newest first. limit <= 0 returns every retained record.
func (m *Monitor) SlowQueries(limit int) []SlowQuery {
	n := len(m.slowRing)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]SlowQuery, n)
	for i := 0; i < n; i++ {
		out[i] = m.slowRing[len(m.slowRing)-1-i]
	}
	return out
}

// Trend names the direction of the recent-window's split-half comparison.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDegrading Trend = "degrading"
	TrendStable    Trend = "stable"
)

// PerformanceTrend splits the recent rolling window in half and reports the
// percent-change of the second half's average duration against the first.
func (m *Monitor) PerformanceTrend() Trend {
	if len(m.recent) < 2 {
		return TrendStable
	}
	mid := len(m.recent) / 2
	first := average(m.recent[:mid])
	second := average(m.recent[mid:])
	if first == 0 {
		return TrendStable
	}
	change := (float64(second) - float64(first)) / float64(first)
	switch {
	case change < trendImprovingThreshold:
		return TrendImproving
	case change > trendDegradingThreshold:
		return TrendDegrading
	default:
		return TrendStable
	}
}

func average(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

// Health is the outcome of a performance health check: ok when no issue was
// detected, with a human-readable reason for each issue otherwise.
type Health struct {
	Healthy bool     `json:"healthy"`
	Issues  []string `json:"issues,omitempty"`
}

// CheckHealth reports degraded-performance issues once enough probes have
// accumulated to make the corresponding rate meaningful.
func (m *Monitor) CheckHealth() Health {
	snap := m.Metrics()
	var issues []string

	if snap.MeanDuration > healthMeanThreshold {
		issues = append(issues, "mean check duration exceeds 0.5ms")
	}
	probes := m.cacheHits + m.cacheMiss
	if probes >= healthCheckMinProbes && snap.CacheHitRate < healthCacheHitFloor {
		issues = append(issues, "cache hit rate below 70%")
	}
	if m.total >= healthCheckMinProbes {
		slowRate := float64(m.slowCount) / float64(m.total)
		if slowRate > healthSlowRateCeiling {
			issues = append(issues, "slow-query rate exceeds 5%")
		}
	}
	if snap.MaxDuration > healthMaxThreshold {
		issues = append(issues, "max check duration exceeds 10ms")
	}

	return Health{Healthy: len(issues) == 0, Issues: issues}
}

// Report is a human-oriented summary combining metrics, trend and health,
// used by generate_performance_report in the observability API.
type Report struct {
	Metrics Metrics `json:"metrics"`
	Trend   Trend   `json:"trend"`
	Health  Health  `json:"health"`
}

// GenerateReport composes Metrics, PerformanceTrend and CheckHealth into a
// single snapshot.
func (m *Monitor) GenerateReport() Report {
	return Report{Metrics: m.Metrics(), Trend: m.PerformanceTrend(), Health: m.CheckHealth()}
}
