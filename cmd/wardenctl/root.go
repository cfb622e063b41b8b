// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wardenhq/warden"
	wconfig "github.com/wardenhq/warden/internal/config"
)

// cliFlags holds the persistent, construction-time flags every subcommand
// shares.
type cliFlags struct {
	configPath   string
	snapshotPath string
	dumpConfig   bool
}

func newRootCmd() *cobra.Command {
	cli := &cliFlags{}

	root := &cobra.Command{
		Use:   "wardenctl",
		Short: "Inspect and drive a warden authorization engine instance",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cli.configPath, "config", "", "Path to a YAML config file")
	flags.StringVar(&cli.snapshotPath, "snapshot", "", "Path to a JSON snapshot file; loaded at startup and rewritten after mutations")
	flags.BoolVar(&cli.dumpConfig, "dump-config", false, "Print the loaded configuration as YAML and exit")

	root.AddCommand(
		newCheckCmd(cli),
		newRoleCmd(cli),
		newGrantCmd(cli),
		newTemplateCmd(cli),
		newStatsCmd(cli),
		newServeCmd(cli),
	)

	return root
}

// loadConfig loads cli.configPath over the engine config defaults and
// applies any flag overrides the caller has already registered on the
// flag set under mappings (flag name -> koanf key).
func loadConfig(cli *cliFlags, flags *pflag.FlagSet, mappings map[string]string) (wconfig.EngineConfig, error) {
	loader := wconfig.NewLoader("WARDEN")
	if err := loader.LoadWithDefaults(wconfig.Defaults(), cli.configPath); err != nil {
		return wconfig.EngineConfig{}, fmt.Errorf("load config: %w", err)
	}
	if flags != nil {
		if err := loader.LoadFlags(flags, mappings); err != nil {
			return wconfig.EngineConfig{}, fmt.Errorf("apply flags: %w", err)
		}
	}

	if cli.dumpConfig {
		if err := loader.DumpYAML(os.Stdout); err != nil {
			return wconfig.EngineConfig{}, fmt.Errorf("dump config: %w", err)
		}
		os.Exit(0)
	}

	var cfg wconfig.EngineConfig
	if err := loader.UnmarshalAndValidate("", &cfg); err != nil {
		return wconfig.EngineConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildEngine constructs a warden.Engine from the loaded EngineConfig and,
// when cli.snapshotPath names an existing file, imports it before
// returning.
func buildEngine(cfg wconfig.EngineConfig, cli *cliFlags, logger *slog.Logger) (*warden.Engine, error) {
	ecfg := warden.DefaultConfig()
	ecfg.EnableCache = cfg.EnableCache
	ecfg.Cache = warden.CacheConfig{MaxSize: cfg.Cache.MaxSize, TTL: cfg.Cache.TTL}
	ecfg.EnableEvents = cfg.EnableEvents
	ecfg.Strict = cfg.Strict
	ecfg.DefaultDeny = cfg.DefaultDeny
	ecfg.MaxDepth = cfg.MaxDepth
	ecfg.Logger = logger

	eng := warden.New(ecfg)

	if cli.snapshotPath == "" {
		return eng, nil
	}
	if _, err := os.Stat(cli.snapshotPath); err != nil {
		return eng, nil
	}
	raw, err := os.ReadFile(cli.snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if err := eng.ImportJSON(raw); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	return eng, nil
}

// saveSnapshot persists the engine's current state back to
// cli.snapshotPath, when one was given. Mutating subcommands call this
// after a successful change so the next invocation picks it up.
func saveSnapshot(eng *warden.Engine, cli *cliFlags) error {
	if cli.snapshotPath == "" {
		return nil
	}
	raw, err := eng.ExportJSON()
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	if err := os.WriteFile(cli.snapshotPath, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
