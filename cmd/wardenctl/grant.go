// Copyright 2026 The Warden Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/core"
	"github.com/wardenhq/warden/temporary"
)

func newGrantCmd(cli *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant or revoke permissions, including temporary and one-time grants",
	}
	cmd.AddCommand(
		newGrantPermissionCmd(cli),
		newRevokePermissionCmd(cli),
		newGrantTempCmd(cli),
		newGrantOnceCmd(cli),
	)
	return cmd
}

func newGrantPermissionCmd(cli *cliFlags) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "permission <role> <resource> <action>",
		Short: "Grant a role a permission",
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

			grant := core.PermissionGrant{Resource: args[1], Action: args[2]}
			if err := eng.GrantPermission(args[0], grant, recursive); err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s:%s to %q\n", args[1], args[2], args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Also grant to every descendant role")
	return cmd
}

func newRevokePermissionCmd(cli *cliFlags) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "revoke <role> <resource> <action>",
		Short: "Revoke a role's permission",
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

			grant := core.PermissionGrant{Resource: args[1], Action: args[2]}
			if err := eng.RevokePermission(args[0], grant, recursive); err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s:%s from %q\n", args[1], args[2], args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Also revoke from every descendant role")
	return cmd
}

func newGrantTempCmd(cli *cliFlags) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "temp <user> <resource> <action>",
		Short: "Grant a time-bounded temporary permission",
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

			id, err := eng.GrantTempPermission(args[0], args[1], args[2], time.Now().Add(ttl), temporary.GrantOptions{})
			if err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted temporary permission %s, expires in %s\n", id, ttl)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "How long the grant remains valid")
	return cmd
}

func newGrantOnceCmd(cli *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "once <user> <resource> <action>",
		Short: "Grant a one-time permission, consumed on its first successful match",
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

			id, err := eng.GrantOncePermission(args[0], args[1], args[2], time.Time{}, temporary.GrantOptions{})
			if err != nil {
				return err
			}
			if err := saveSnapshot(eng, cli); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted one-time permission %s\n", id)
			return nil
		},
	}
	return cmd
}
