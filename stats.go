// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package warden

import (
	"github.com/wardenhq/warden/cache"
	"github.com/wardenhq/warden/monitor"
	"github.com/wardenhq/warden/templates"
)

// Stats is the tree of sub-stats get_stats() returns: one section per
// store, each nil/zero when that store is disabled or has nothing to
// report.
type Stats struct {
	RoleCount     int             `json:"roleCount"`
	ABACRuleCount int             `json:"abacRuleCount"`
	PolicyCount   int             `json:"policyCount"`
	Cache         *cache.Stats    `json:"cache,omitempty"`
	Performance   monitor.Metrics `json:"performance"`
	TempGrants    int             `json:"tempGrants"`
	Templates     []string        `json:"templates"`
	AuditFailures int64           `json:"auditFailures"`
}

// GetStats returns a point-in-time snapshot across every store.
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{
		RoleCount:     len(e.roles.Roles()),
		ABACRuleCount: len(e.abacEng.Rules()),
		PolicyCount:   len(e.policies.Policies()),
		Performance:   e.mon.Metrics(),
		TempGrants:    e.temp.Len(),
		Templates:     templates.List(),
	}
	if e.dcache != nil {
		cs := e.dcache.Stats()
		s.Cache = &cs
	}
	if e.audit != nil {
		s.AuditFailures = e.audit.Failures()
	}
	return s
}

// GetPerformanceMetrics returns the rolling performance metrics.
func (e *Engine) GetPerformanceMetrics() monitor.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mon.Metrics()
}

// GetSlowQueries returns up to limit of the most recent slow-query
// records, newest first. limit <= 0 returns every retained record.
func (e *Engine) GetSlowQueries(limit int) []monitor.SlowQuery {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mon.SlowQueries(limit)
}

// GetPerformanceTrend reports the rolling window's split-half trend.
func (e *Engine) GetPerformanceTrend() monitor.Trend {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mon.PerformanceTrend()
}

// CheckPerformanceHealth runs the monitor's threshold-based health check.
func (e *Engine) CheckPerformanceHealth() monitor.Health {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mon.CheckHealth()
}

// GeneratePerformanceReport composes metrics, trend and health into one
// report.
func (e *Engine) GeneratePerformanceReport() monitor.Report {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mon.GenerateReport()
}
