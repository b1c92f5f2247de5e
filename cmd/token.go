// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/clientcredentials"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Get an access token for --token using the client credentials flow",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client-id")
		clientSecret, _ := cmd.Flags().GetString("client-secret")
		tokenURL, _ := cmd.Flags().GetString("token-url")
		issuerURL, _ := cmd.Flags().GetString("issuer-url")
		scopes, _ := cmd.Flags().GetStringSlice("scopes")

		token, err := fetchToken(cmd.Context(), clientID, clientSecret, tokenURL, issuerURL, scopes)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func fetchToken(ctx context.Context, clientID, clientSecret, tokenURL, issuerURL string, scopes []string) (string, error) {
	if tokenURL == "" {
		if issuerURL == "" {
			return "", fmt.Errorf("either --token-url or --issuer-url must be provided")
		}

		provider, err := oidc.NewProvider(ctx, issuerURL)
		if err != nil {
			return "", fmt.Errorf("failed to discover token endpoint of %s: %w", issuerURL, err)
		}
		tokenURL = provider.Endpoint().TokenURL
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token.AccessToken, nil
}

func init() {
	tokenCmd.Flags().String("client-id", "", "Client ID")
	tokenCmd.Flags().String("client-secret", "", "Client Secret")
	tokenCmd.Flags().String("token-url", "", "Token URL")
	tokenCmd.Flags().String("issuer-url", "", "Issuer URL, used for OIDC discovery when --token-url is empty")
	tokenCmd.Flags().StringSlice("scopes", []string{}, "Scopes (comma-separated)")

	_ = tokenCmd.MarkFlagRequired("client-id")
	_ = tokenCmd.MarkFlagRequired("client-secret")

	rootCmd.AddCommand(tokenCmd)
}
