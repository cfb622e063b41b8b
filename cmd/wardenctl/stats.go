// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(cli *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print role/rule/policy counts, cache stats, and performance metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cli, nil, nil)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg, cli, newLogger())
			if err != nil {
				return err
			}

			raw, err := json.MarshalIndent(eng.GetStats(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
}
