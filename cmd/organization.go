// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/canonical/provisioning-service/pkg/provisioning"
)

var organizationCmd = &cobra.Command{
	Use:   "organization",
	Short: "Manage organizations",
}

var bootstrapOrganizationCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create an organization and invite its first administrator",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := new(provisioning.BootstrapRequest)
		req.OrganizationName, _ = cmd.Flags().GetString("name")
		req.OrganizationSlug, _ = cmd.Flags().GetString("slug")
		req.AdminName, _ = cmd.Flags().GetString("admin-name")
		req.AdminEmail, _ = cmd.Flags().GetString("admin-email")
		req.AdminPhone, _ = cmd.Flags().GetString("admin-phone")

		res := new(provisioning.BootstrapResult)
		if err := getClient().do(cmd.Context(), http.MethodPost, "/api/v0/organizations", req, res); err != nil {
			return fmt.Errorf("failed to bootstrap organization: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Organization created: %s\nInvitation sent: %s\n", res.OrganizationID, res.InvitationID)
		return nil
	},
}

func init() {
	bootstrapOrganizationCmd.Flags().String("name", "", "Organization name")
	bootstrapOrganizationCmd.Flags().String("slug", "", "Organization slug, lowercase letters, digits and hyphens")
	bootstrapOrganizationCmd.Flags().String("admin-name", "", "Name of the first administrator")
	bootstrapOrganizationCmd.Flags().String("admin-email", "", "Email of the first administrator")
	bootstrapOrganizationCmd.Flags().String("admin-phone", "", "Phone of the first administrator, E.164 format")
	_ = bootstrapOrganizationCmd.MarkFlagRequired("name")
	_ = bootstrapOrganizationCmd.MarkFlagRequired("slug")
	_ = bootstrapOrganizationCmd.MarkFlagRequired("admin-name")
	_ = bootstrapOrganizationCmd.MarkFlagRequired("admin-email")

	organizationCmd.AddCommand(bootstrapOrganizationCmd)
	rootCmd.AddCommand(organizationCmd)
}
