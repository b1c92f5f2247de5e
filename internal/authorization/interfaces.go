// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
)

type AuthorizerInterface interface {
	HasRoleAtLeast(ctx context.Context, identityID string, required Role) (bool, error)
	// RequireRoleAtLeast returns a forbidden error when the identity ranks
	// below the required role.
	RequireRoleAtLeast(ctx context.Context, identityID string, required Role) error
}

// RoleStoreInterface is the subset of the storage layer needed to read grants.
type RoleStoreInterface interface {
	ListRolesByIdentityID(ctx context.Context, identityID string) ([]string, error)
}
