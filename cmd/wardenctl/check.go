// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden"
)

func newCheckCmd(cli *cliFlags) *cobra.Command {
	var skipCache bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <user> <resource> <action>",
		Short: "Evaluate a single permission check against the loaded engine state",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cli, nil, nil)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg, cli, newLogger())
			if err != nil {
				return err
			}

			d := eng.Check(args[0], args[1], args[2], warden.CheckOptions{SkipCache: skipCache})

			if asJSON {
				raw, err := json.MarshalIndent(d, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(raw))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "allowed=%t source=%s reason=%q duration=%s\n",
				d.Allowed, d.Source, d.Reason, d.Duration)
			if !d.Allowed {
				return fmt.Errorf("denied")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "Bypass the decision cache for this check")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full decision as JSON")
	return cmd
}
