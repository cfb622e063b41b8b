// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// promMetrics projects the in-memory rolling-metrics model onto a small set
// of Prometheus collectors. It is nil-safe throughout: a Monitor built with
// a nil Registerer carries a promMetrics with nil collectors, and every
// method here checks for that before touching them, so Prometheus stays an
// optional side projection rather than a second source of truth.
type promMetrics struct {
	checksTotal   *prometheus.CounterVec
	cacheHitRatio prometheus.Gauge
	slowQueries   prometheus.Counter
	duration      prometheus.Histogram
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	if reg == nil {
		return &promMetrics{}
	}

	pm := &promMetrics{
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_checks_total",
			Help: "Total number of permission checks, partitioned by result.",
		}, []string{"result"}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "warden_cache_hit_ratio",
			Help: "Rolling cache hit ratio observed by the decision cache.",
		}),
		slowQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warden_slow_queries_total",
			Help: "Total number of checks exceeding the configured slow-query threshold.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "warden_check_duration_seconds",
			Help:    "Histogram of permission-check latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{pm.checksTotal, pm.cacheHitRatio, pm.slowQueries, pm.duration} {
		// A duplicate registration (e.g. two engines sharing a registerer) is
		// not fatal; the first engine's collector keeps serving either way.
		_ = reg.Register(c)
	}
	return pm
}

func (pm *promMetrics) observe(result string, duration time.Duration, isSlow bool, hitRate float64) {
	if pm == nil {
		return
	}
	if pm.checksTotal != nil {
		pm.checksTotal.WithLabelValues(result).Inc()
	}
	if pm.duration != nil {
		pm.duration.Observe(duration.Seconds())
	}
	if pm.cacheHitRatio != nil {
		pm.cacheHitRatio.Set(hitRate)
	}
	if isSlow && pm.slowQueries != nil {
		pm.slowQueries.Inc()
	}
}
