// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"time"

	"github.com/canonical/provisioning-service/internal/types"
)

type StorageInterface interface {
	CreateOrganization(ctx context.Context, o *types.Organization) (*types.Organization, error)
	GetOrganizationByID(ctx context.Context, id string) (*types.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
	CountOrganizations(ctx context.Context) (int64, error)
	ClaimBootstrap(ctx context.Context) (bool, error)
	ReleaseBootstrap(ctx context.Context) error

	CreateInvitation(ctx context.Context, i *types.Invitation) (*types.Invitation, error)
	GetInvitationByID(ctx context.Context, id string) (*types.Invitation, error)
	MarkInvitationAccepted(ctx context.Context, id string, acceptedAt time.Time) error
	MarkInvitationPending(ctx context.Context, id string, expiresAt time.Time) error
	CancelInvitation(ctx context.Context, id string) error

	GetMembership(ctx context.Context, organizationID, identityID string) (*types.Membership, error)
	CreateMembership(ctx context.Context, organizationID, identityID string) (*types.Membership, error)

	GetProfileByIdentityID(ctx context.Context, identityID string) (*types.Profile, error)
	CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error)
	UpdateProfile(ctx context.Context, p *types.Profile) error

	GetRoleGrant(ctx context.Context, identityID, role string) (*types.RoleGrant, error)
	CreateRoleGrant(ctx context.Context, identityID, role string) (*types.RoleGrant, error)
	ListRolesByIdentityID(ctx context.Context, identityID string) ([]string, error)

	ListOrganizationMembersWithRoles(ctx context.Context, organizationID string, roles []string) ([]string, error)
}
