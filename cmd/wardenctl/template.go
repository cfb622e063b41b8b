// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/templates"
)

func newTemplateCmd(cli *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "List and apply built-in role templates",
	}
	cmd.AddCommand(newTemplateListCmd(), newTemplateApplyCmd(cli))
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(templates.List(), "\n"))
			return nil
		},
	}
}

func newTemplateApplyCmd(cli *cliFlags) *cobra.Command {
	var merge, skipExisting bool

	cmd := &cobra.Command{
		Use:   "apply <id>",
		Short: "Apply a built-in template's roles onto the engine's role graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cli, nil, nil)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg, cli, newLogger())
			if err != nil {
				return err
			}

			created, err := eng.ApplyTemplate(args[0], templates.ApplyOptions{
				Merge:        merge,
				SkipExisting: skipExisting,
			})
			if err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created roles: %s\n", strings.Join(created, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge grants into existing roles instead of failing on conflict")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip roles that already exist instead of failing")
	return cmd
}
