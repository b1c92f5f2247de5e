// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"errors"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/storage"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/internal/types"
)

// Link ties an identity to an organization with a role.
type Link struct {
	IdentityID     string
	OrganizationID string
	Role           string
	Name           string
	Phone          string
}

// TenantLinker makes sure membership, profile and role grant exist for a
// Link. Every record is checked by its natural key before insert and a unique
// violation counts as already done, so EnsureTenantLink can be re-run freely.
type TenantLinker struct {
	storage StorageInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (l *TenantLinker) EnsureTenantLink(ctx context.Context, link Link) error {
	ctx, span := l.tracer.Start(ctx, "provisioning.TenantLinker.EnsureTenantLink")
	defer span.End()

	if err := l.ensureMembership(ctx, link); err != nil {
		return err
	}

	if err := l.ensureProfile(ctx, link); err != nil {
		return err
	}

	return l.ensureRoleGrant(ctx, link)
}

func (l *TenantLinker) ensureMembership(ctx context.Context, link Link) error {
	_, err := l.storage.GetMembership(ctx, link.OrganizationID, link.IdentityID)
	if err == nil {
		return nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return apierror.Upstream(err, "failed to look up membership")
	}

	_, err = l.storage.CreateMembership(ctx, link.OrganizationID, link.IdentityID)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return apierror.Upstream(err, "failed to create membership")
	}

	return nil
}

func (l *TenantLinker) ensureProfile(ctx context.Context, link Link) error {
	profile := &types.Profile{
		IdentityID:     link.IdentityID,
		OrganizationID: link.OrganizationID,
		Name:           link.Name,
		Phone:          link.Phone,
	}

	_, err := l.storage.GetProfileByIdentityID(ctx, link.IdentityID)

	switch {
	case err == nil:
		return l.updateProfile(ctx, profile)
	case !errors.Is(err, storage.ErrNotFound):
		return apierror.Upstream(err, "failed to look up profile")
	}

	_, err = l.storage.CreateProfile(ctx, profile)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrDuplicateKey):
		// inserted concurrently, the mutable fields still need refreshing
		return l.updateProfile(ctx, profile)
	default:
		return apierror.Upstream(err, "failed to create profile")
	}
}

func (l *TenantLinker) updateProfile(ctx context.Context, p *types.Profile) error {
	if err := l.storage.UpdateProfile(ctx, p); err != nil {
		return apierror.Upstream(err, "failed to update profile")
	}
	return nil
}

func (l *TenantLinker) ensureRoleGrant(ctx context.Context, link Link) error {
	_, err := l.storage.GetRoleGrant(ctx, link.IdentityID, link.Role)
	if err == nil {
		return nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return apierror.Upstream(err, "failed to look up role grant")
	}

	_, err = l.storage.CreateRoleGrant(ctx, link.IdentityID, link.Role)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return apierror.Upstream(err, "failed to create role grant")
	}

	return nil
}

func NewTenantLinker(s StorageInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *TenantLinker {
	l := new(TenantLinker)

	l.storage = s
	l.tracer = tracer
	l.logger = logger

	return l
}
