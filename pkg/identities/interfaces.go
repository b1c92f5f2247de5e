// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identities

import (
	"context"

	"github.com/canonical/provisioning-service/internal/authorization"
	"github.com/canonical/provisioning-service/internal/kratos"
	"github.com/canonical/provisioning-service/internal/types"
)

type ServiceInterface interface {
	DeleteIdentity(ctx context.Context, callerID string, req *DeleteRequest) error
	UpdateIdentity(ctx context.Context, callerID string, req *UpdateRequest) error
	ResetSecondFactor(ctx context.Context, callerID string, req *ResetFactorsRequest) (*ResetFactorsResult, error)
}

type AuthzInterface interface {
	RequireRoleAtLeast(ctx context.Context, identityID string, required authorization.Role) error
}

type KratosClientInterface interface {
	UpdateIdentity(ctx context.Context, id string, update kratos.IdentityUpdate) error
	DeleteIdentity(ctx context.Context, id string) error
	ListFactors(ctx context.Context, id string) ([]types.Factor, error)
	DeleteFactor(ctx context.Context, id, factorType string) error
}
