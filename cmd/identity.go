// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/canonical/provisioning-service/pkg/identities"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Privileged operations on identities",
}

func identityPath(id string) string {
	return "/api/v0/identities/" + url.PathEscape(id)
}

var deleteIdentityCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getClient().do(cmd.Context(), http.MethodDelete, identityPath(args[0]), nil, nil); err != nil {
			return fmt.Errorf("failed to delete identity: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Identity deleted: %s\n", args[0])
		return nil
	},
}

var updateIdentityCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change the email or the password of an identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := new(identities.UpdateRequest)

		if cmd.Flags().Changed("email") {
			email, _ := cmd.Flags().GetString("email")
			req.Email = &email
		}
		if cmd.Flags().Changed("password") {
			password, _ := cmd.Flags().GetString("password")
			req.Password = &password
		}

		if req.Email == nil && req.Password == nil {
			return fmt.Errorf("at least one of --email or --password is required")
		}

		if err := getClient().do(cmd.Context(), http.MethodPatch, identityPath(args[0]), req, nil); err != nil {
			return fmt.Errorf("failed to update identity: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Identity updated: %s\n", args[0])
		return nil
	},
}

var resetFactorsCmd = &cobra.Command{
	Use:   "reset-factors [id]",
	Short: "Remove every second factor enrolled by an identity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := new(identities.ResetFactorsResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, identityPath(args[0])+"/factors/reset", nil, res); err != nil {
			return fmt.Errorf("failed to reset second factors: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Second factors removed: %d\n", res.FactorsRemoved)
		return nil
	},
}

func init() {
	updateIdentityCmd.Flags().String("email", "", "New email")
	updateIdentityCmd.Flags().String("password", "", "New password")

	identityCmd.AddCommand(deleteIdentityCmd, updateIdentityCmd, resetFactorsCmd)
	rootCmd.AddCommand(identityCmd)
}
