// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
)

var _ AuthorizerInterface = (*Authorizer)(nil)

type Authorizer struct {
	store RoleStoreInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// HasRoleAtLeast compares the highest role granted to the identity with the
// required one. An identity with no grants never satisfies the check.
func (a *Authorizer) HasRoleAtLeast(ctx context.Context, identityID string, required Role) (bool, error) {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.HasRoleAtLeast")
	defer span.End()

	if identityID == "" {
		return false, nil
	}

	roles, err := a.store.ListRolesByIdentityID(ctx, identityID)
	if err != nil {
		a.logger.Errorf("failed to list roles for %s: %v", identityID, err)
		return false, apierror.Upstream(err, "failed to load role grants")
	}

	top, ok := MaxRole(roles)
	if !ok {
		return false, nil
	}

	return top.AtLeast(required), nil
}

func (a *Authorizer) RequireRoleAtLeast(ctx context.Context, identityID string, required Role) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.RequireRoleAtLeast")
	defer span.End()

	if identityID == "" {
		return apierror.Unauthenticated("caller identity is required")
	}

	allowed, err := a.HasRoleAtLeast(ctx, identityID, required)
	if err != nil {
		return err
	}

	if !allowed {
		a.logger.Security().AuthzFailureNotEnoughPermissions(identityID, required.String())
		return apierror.Forbidden("insufficient role, " + required.String() + " or above required")
	}

	return nil
}

func NewAuthorizer(store RoleStoreInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	a := new(Authorizer)

	a.store = store

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
