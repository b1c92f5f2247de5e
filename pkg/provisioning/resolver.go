// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"errors"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/kratos"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/tracing"
)

// IdentityResolver finds or creates the credential record for an email.
// Callers never need to check for an existing identity themselves.
type IdentityResolver struct {
	kratos KratosClientInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// ResolveIdentity returns the id of the identity owning email and whether it
// was created by this call. An existing identity gets its password and name
// replaced.
func (r *IdentityResolver) ResolveIdentity(ctx context.Context, email, name, password string) (string, bool, error) {
	ctx, span := r.tracer.Start(ctx, "provisioning.IdentityResolver.ResolveIdentity")
	defer span.End()

	identity, err := r.kratos.GetIdentityByEmail(ctx, email)

	switch {
	case err == nil:
		if err := r.update(ctx, identity.ID, name, password); err != nil {
			return "", false, err
		}
		return identity.ID, false, nil
	case !errors.Is(err, kratos.ErrIdentityNotFound):
		return "", false, apierror.Upstream(err, "failed to look up identity")
	}

	created, err := r.kratos.CreateIdentity(ctx, email, name, password)
	if err == nil {
		r.logger.Debugf("created identity %s", created.ID)
		return created.ID, true, nil
	}

	if !errors.Is(err, kratos.ErrIdentityExists) {
		return "", false, apierror.Upstream(err, "failed to create identity")
	}

	// a concurrent request created it first
	identity, err = r.kratos.GetIdentityByEmail(ctx, email)
	if err != nil {
		return "", false, apierror.Upstream(err, "failed to look up identity")
	}

	if err := r.update(ctx, identity.ID, name, password); err != nil {
		return "", false, err
	}

	return identity.ID, false, nil
}

func (r *IdentityResolver) update(ctx context.Context, id, name, password string) error {
	err := r.kratos.UpdateIdentity(ctx, id, kratos.IdentityUpdate{Name: &name, Password: &password})
	if err != nil {
		return apierror.Upstream(err, "failed to update identity")
	}
	return nil
}

func NewIdentityResolver(k KratosClientInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *IdentityResolver {
	r := new(IdentityResolver)

	r.kratos = k
	r.tracer = tracer
	r.logger = logger

	return r
}
