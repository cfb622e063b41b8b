// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/rbac"
)

func newRoleCmd(cli *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Create, inspect, and assign roles",
	}
	cmd.AddCommand(
		newRoleCreateCmd(cli),
		newRoleDeleteCmd(cli),
		newRoleAssignCmd(cli),
		newRoleUnassignCmd(cli),
	)
	return cmd
}

func newRoleCreateCmd(cli *cliFlags) *cobra.Command {
	var parents []string
	var displayName string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a role, optionally inheriting from parents",
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

			if err := eng.CreateRole(args[0], rbac.Options{
				DisplayName: displayName,
				Parents:     parents,
			}); err != nil {
				return err
			}

			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created role %q\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&parents, "parent", nil, "Parent role name (repeatable)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Human-readable display name")
	return cmd
}

func newRoleDeleteCmd(cli *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a role",
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

			if err := eng.DeleteRole(args[0]); err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted role %q\n", args[0])
			return nil
		},
	}
}

func newRoleAssignCmd(cli *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <user> <role>",
		Short: "Assign a role to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cli, nil, nil)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg, cli, newLogger())
			if err != nil {
				return err
			}

			if err := eng.AssignRole(args[0], args[1]); err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assigned %q to %q\n", args[1], args[0])
			return nil
		},
	}
}

func newRoleUnassignCmd(cli *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <user> <role>",
		Short: "Remove a role assignment from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cli, nil, nil)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg, cli, newLogger())
			if err != nil {
				return err
			}

			if err := eng.UnassignRole(args[0], args[1]); err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unassigned %q from %q\n", args[1], args[0])
			return nil
		},
	}
}
