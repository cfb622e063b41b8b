// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package warden

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/wardenhq/warden/core"
)

// Entry is a single audit record: the decision plus the request that
// produced it.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	User      string         `json:"user"`
	Resource  string         `json:"resource"`
	Action    string         `json:"action"`
	Decision  core.Decision  `json:"decision"`
	Context   map[string]any `json:"context,omitempty"`
}

// AuditSink is the narrow interface a host plugs an audit backend into.
// The engine never designs or ships a backend; the host supplies one.
type AuditSink interface {
	Write(ctx context.Context, entry Entry) error
}

// retryingAuditSink wraps a host-supplied AuditSink with a small bounded
// retry so a transient failure doesn't immediately count against the host,
// while keeping the audit write off the decision's own return path.
type retryingAuditSink struct {
	sink     AuditSink
	logger   *slog.Logger
	attempts uint64
	failures atomic.Int64
}

const (
	auditRetryBaseDelay = 10 * time.Millisecond
	auditRetryAttempts  = 3
)

func newRetryingAuditSink(sink AuditSink, logger *slog.Logger) *retryingAuditSink {
	return &retryingAuditSink{sink: sink, logger: logger, attempts: auditRetryAttempts}
}

// dispatch hands entry to write on its own goroutine, detached from both
// the engine's mutex and the Check call that produced entry — a slow or
// retrying sink must never add its latency to a decision.
func (a *retryingAuditSink) dispatch(entry Entry) {
	go a.write(context.Background(), entry)
}

// write attempts the sink's Write with exponential backoff, swallowing a
// persistent failure into the failure counter rather than propagating it —
// an audit-write failure never fails or delays the decision it describes.
func (a *retryingAuditSink) write(ctx context.Context, entry Entry) {
	base, err := retry.NewExponential(auditRetryBaseDelay)
	if err != nil {
		a.failures.Add(1)
		a.logger.Error("audit retry backoff misconfigured", "error", err)
		return
	}
	backoff := retry.WithMaxRetries(a.attempts, base)

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if werr := a.sink.Write(ctx, entry); werr != nil {
			return retry.RetryableError(werr)
		}
		return nil
	})
	if err != nil {
		a.failures.Add(1)
		a.logger.Warn("audit write failed after retries", "user", entry.User, "resource", entry.Resource, "action", entry.Action, "error", err)
	}
}

// Failures returns the number of audit entries that were ultimately
// dropped after exhausting retries.
func (a *retryingAuditSink) Failures() int64 {
	return a.failures.Load()
}
