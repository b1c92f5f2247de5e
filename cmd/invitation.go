// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/canonical/provisioning-service/pkg/provisioning"
)

var invitationCmd = &cobra.Command{
	Use:   "invitation",
	Short: "Manage invitations",
}

func invitationPath(id string, action ...string) string {
	p := "/api/v0/invitations/" + url.PathEscape(id)
	for _, a := range action {
		p += "/" + a
	}
	return p
}

var getInvitationCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show an invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view := new(provisioning.InvitationView)
		if err := getClient().do(cmd.Context(), http.MethodGet, invitationPath(args[0]), nil, view); err != nil {
			return fmt.Errorf("failed to get invitation: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tROLE\tORGANIZATION\tSTATUS\tEXPIRES AT\tVALID")
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n", view.Email, view.Role, view.OrganizationName, view.Status, view.ExpiresAt.Format(time.RFC3339), view.Valid)
		return w.Flush()
	},
}

var acceptInvitationCmd = &cobra.Command{
	Use:   "accept [id]",
	Short: "Accept an invitation, creating the identity if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := new(provisioning.AcceptRequest)
		req.Name, _ = cmd.Flags().GetString("name")
		req.Password, _ = cmd.Flags().GetString("password")

		res := new(provisioning.AcceptResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, invitationPath(args[0], "accept"), req, res); err != nil {
			return fmt.Errorf("failed to accept invitation: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invitation accepted by identity %s\n", res.IdentityID)
		return nil
	},
}

var resendInvitationCmd = &cobra.Command{
	Use:   "resend [id]",
	Short: "Refresh the expiry of a pending invitation and send it again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := new(provisioning.ResendResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, invitationPath(args[0], "resend"), nil, res); err != nil {
			return fmt.Errorf("failed to resend invitation: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invitation resent to %s\n", res.Email)
		return nil
	},
}

var cancelInvitationCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a pending invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getClient().do(cmd.Context(), http.MethodPost, invitationPath(args[0], "cancel"), nil, nil); err != nil {
			return fmt.Errorf("failed to cancel invitation: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invitation cancelled: %s\n", args[0])
		return nil
	},
}

func init() {
	acceptInvitationCmd.Flags().String("name", "", "Display name")
	acceptInvitationCmd.Flags().String("password", "", "Password, at least 6 characters")
	_ = acceptInvitationCmd.MarkFlagRequired("name")
	_ = acceptInvitationCmd.MarkFlagRequired("password")

	invitationCmd.AddCommand(getInvitationCmd, acceptInvitationCmd, resendInvitationCmd, cancelInvitationCmd)
	rootCmd.AddCommand(invitationCmd)
}
