// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package config

import "time"

// ServerConfig configures the wardenctl serve command's optional HTTP
// surface: a Prometheus metrics endpoint and a websocket live event feed.
type ServerConfig struct {
	ListenAddr    string `koanf:"listen_addr"`
	MetricsPath   string `koanf:"metrics_path"`
	EventsPath    string `koanf:"events_path"`
	SnapshotPath  string `koanf:"snapshot_path"`
	WatchSnapshot bool   `koanf:"watch_snapshot"`
}

// CacheConfig mirrors the engine's decision-cache options.
type CacheConfig struct {
	MaxSize int           `koanf:"max_size"`
	TTL     time.Duration `koanf:"ttl"`
}

// EngineConfig is the top-level, file/env/flag-loadable configuration for
// a warden engine instance.
type EngineConfig struct {
	EnableCache  bool         `koanf:"enable_cache"`
	Cache        CacheConfig  `koanf:"cache"`
	EnableAudit  bool         `koanf:"enable_audit"`
	EnableEvents bool         `koanf:"enable_events"`
	Strict       bool         `koanf:"strict"`
	DefaultDeny  bool         `koanf:"default_deny"`
	MaxDepth     int          `koanf:"max_depth"`
	Server       ServerConfig `koanf:"server"`
}

// Defaults returns the EngineConfig populated with the engine's documented
// defaults, the starting point LoadWithDefaults layers a file and
// environment variables on top of.
func Defaults() EngineConfig {
	return EngineConfig{
		EnableCache:  true,
		Cache:        CacheConfig{MaxSize: 10_000, TTL: 5 * time.Minute},
		EnableAudit:  false,
		EnableEvents: true,
		Strict:       false,
		DefaultDeny:  true,
		MaxDepth:     10,
		Server: ServerConfig{
			ListenAddr:    ":8080",
			MetricsPath:   "/metrics",
			EventsPath:    "/events",
			SnapshotPath:  "",
			WatchSnapshot: false,
		},
	}
}

// Validate checks the config for internal consistency, accumulating every
// violation rather than stopping at the first.
func (c EngineConfig) Validate() error {
	var errs ValidationErrors

	if c.EnableCache {
		if err := MustBeGreaterThan(NewPath("cache").Child("max_size"), c.Cache.MaxSize, 0); err != nil {
			errs = append(errs, err)
		}
		if err := MustBeGreaterThan(NewPath("cache").Child("ttl"), c.Cache.TTL, 0); err != nil {
			errs = append(errs, err)
		}
	}
	if err := MustBeGreaterThan(NewPath("max_depth"), c.MaxDepth, 0); err != nil {
		errs = append(errs, err)
	}
	if c.Server.WatchSnapshot {
		if err := MustNotBeEmpty(NewPath("server").Child("snapshot_path"), c.Server.SnapshotPath); err != nil {
			errs = append(errs, err)
		}
	}

	return errs.OrNil()
}
