// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"time"

	"github.com/canonical/provisioning-service/internal/authorization"
	"github.com/canonical/provisioning-service/internal/kratos"
	"github.com/canonical/provisioning-service/internal/mail"
	"github.com/canonical/provisioning-service/internal/types"
)

type ServiceInterface interface {
	BootstrapOrganization(ctx context.Context, callerID string, req *BootstrapRequest) (*BootstrapResult, error)
	AcceptInvitation(ctx context.Context, req *AcceptRequest) (*AcceptResult, error)
	ResendInvitation(ctx context.Context, callerID, invitationID string) (*ResendResult, error)
	CancelInvitation(ctx context.Context, callerID, invitationID string) error
	GetInvitation(ctx context.Context, invitationID string) (*InvitationView, error)
}

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

	ListOrganizationMembersWithRoles(ctx context.Context, organizationID string, roles []string) ([]string, error)
}

type AuthzInterface interface {
	RequireRoleAtLeast(ctx context.Context, identityID string, required authorization.Role) error
}

type KratosClientInterface interface {
	GetIdentityByEmail(ctx context.Context, email string) (*types.Identity, error)
	CreateIdentity(ctx context.Context, email, name, password string) (*types.Identity, error)
	UpdateIdentity(ctx context.Context, id string, update kratos.IdentityUpdate) error
	ListIdentitiesByIDs(ctx context.Context, ids []string) ([]types.Identity, error)
}

type MailerInterface interface {
	SendInvitation(context.Context, mail.InvitationEmail) error
	SendNewMember(context.Context, mail.NewMemberEmail) error
}

type DispatcherInterface interface {
	Go(ctx context.Context, name string, fn func(context.Context) error)
}
