// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
)

// ProviderInterface is satisfied by *oidc.Provider.
type ProviderInterface interface {
	Verifier(*oidc.Config) *oidc.IDTokenVerifier
}

type TokenVerifierInterface interface {
	// VerifyToken returns the subject of rawToken once its signature and the access policy are checked
	VerifyToken(ctx context.Context, rawToken string) (string, error)
}
