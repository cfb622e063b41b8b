// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides a unified configuration loader for warden's
// binaries: struct defaults, then an optional YAML file, then environment
// variables, with highest priority given to explicit CLI flag overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	logger    *slog.Logger
}

// Validator can be implemented by config structs to enable validation
// after unmarshaling.
type Validator interface {
	Validate() error
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets a logger the loader uses for debug-level tracing of
// which source supplied each key (currently unused, reserved for a future
// source-tracing mode, mirroring the ambient teacher option).
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a configuration loader. envPrefix should be like
// "WARDEN" (without trailing delimiter). Environment variables use double
// underscore (__) for nesting: WARDEN__CACHE__MAX_SIZE -> cache.max_size.
func NewLoader(envPrefix string, opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: envPrefix + "__",
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// LoadWithDefaults loads configuration with the following priority
// (highest to lowest): environment variables, a YAML config file, struct
// defaults. If configPath is specified but the file does not exist, an
// error is returned. An empty configPath skips that source.
func (l *Loader) LoadWithDefaults(defaults any, configPath string) error {
	if defaults != nil {
		if err := l.k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
			return fmt.Errorf("load config defaults: %w", err)
		}
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file not found: %s", configPath)
		}
		if err := l.k.Load(file.Provider(configPath), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	envProvider := env.Provider(l.envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		return key
	})
	if err := l.k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("load environment variables: %w", err)
	}

	return nil
}

// LoadFlags applies CLI flag overrides using explicit mappings (flag name
// -> koanf key). Only flags the user actually set are applied. Call after
// LoadWithDefaults for highest-priority overrides.
func (l *Loader) LoadFlags(flags *pflag.FlagSet, mappings map[string]string) error {
	var firstErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := mappings[f.Name]
		if !ok {
			return
		}
		if err := l.k.Set(key, f.Value.String()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("flag %s: %w", f.Name, err)
		}
	})
	return firstErr
}

// Unmarshal unmarshals the loaded configuration at path into out.
func (l *Loader) Unmarshal(path string, out any) error {
	return l.k.Unmarshal(path, out)
}

// UnmarshalAndValidate unmarshals and, when out implements Validator, runs
// Validate() afterward.
func (l *Loader) UnmarshalAndValidate(path string, out any) error {
	if err := l.k.Unmarshal(path, out); err != nil {
		return err
	}
	if v, ok := out.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// Set manually overrides a configuration key.
func (l *Loader) Set(key string, value any) error {
	return l.k.Set(key, value)
}

// Raw returns all loaded configuration as a nested map.
func (l *Loader) Raw() map[string]any {
	return l.k.Raw()
}

// DumpYAML writes the loaded configuration as YAML, for `wardenctl ...
// --dump-config`-style diagnostics.
func (l *Loader) DumpYAML(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(l.k.Raw())
}
