// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identities

import (
	"context"
	"errors"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/authorization"
	"github.com/canonical/provisioning-service/internal/kratos"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/internal/validation"
)

var _ ServiceInterface = (*Service)(nil)

// Service performs privileged mutations on identities other than the
// caller's. Every operation requires admin or above.
type Service struct {
	authz     AuthzInterface
	kratos    KratosClientInterface
	validator *validation.Validator

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// authorize runs the checks shared by every mutation, in order: caller role,
// payload, then the ban on targeting oneself.
func (s *Service) authorize(ctx context.Context, callerID, targetID string, req any) error {
	if err := s.authz.RequireRoleAtLeast(ctx, callerID, authorization.RoleAdmin); err != nil {
		return err
	}

	if err := s.validator.Struct(req); err != nil {
		return err
	}

	if callerID == targetID {
		return apierror.Wrap(apierror.KindForbidden, apierror.ErrSelfTarget, "this operation cannot target your own identity")
	}

	return nil
}

func kratosError(err error, message string) error {
	if errors.Is(err, kratos.ErrIdentityNotFound) {
		return apierror.NotFound("identity not found")
	}
	return apierror.Upstream(err, message)
}

func (s *Service) DeleteIdentity(ctx context.Context, callerID string, req *DeleteRequest) error {
	ctx, span := s.tracer.Start(ctx, "identities.Service.DeleteIdentity")
	defer span.End()

	if err := s.authorize(ctx, callerID, req.TargetUserID, req); err != nil {
		return err
	}

	if err := s.kratos.DeleteIdentity(ctx, req.TargetUserID); err != nil {
		return kratosError(err, "failed to delete identity")
	}

	s.logger.Security().UserDeleted(callerID, req.TargetUserID)

	return nil
}

func (s *Service) UpdateIdentity(ctx context.Context, callerID string, req *UpdateRequest) error {
	ctx, span := s.tracer.Start(ctx, "identities.Service.UpdateIdentity")
	defer span.End()

	if err := s.authorize(ctx, callerID, req.TargetUserID, req); err != nil {
		return err
	}

	update := kratos.IdentityUpdate{Email: req.Email, Password: req.Password}

	if err := s.kratos.UpdateIdentity(ctx, req.TargetUserID, update); err != nil {
		return kratosError(err, "failed to update identity")
	}

	fields := make([]string, 0, 2)
	if req.Email != nil {
		fields = append(fields, "email")
	}
	if req.Password != nil {
		fields = append(fields, "password")
	}

	s.logger.Security().UserUpdated(callerID, req.TargetUserID, fields...)

	return nil
}

// ResetSecondFactor removes every second-factor credential of the target one
// by one. Factors that fail to delete are logged and left out of the count.
func (s *Service) ResetSecondFactor(ctx context.Context, callerID string, req *ResetFactorsRequest) (*ResetFactorsResult, error) {
	ctx, span := s.tracer.Start(ctx, "identities.Service.ResetSecondFactor")
	defer span.End()

	if err := s.authorize(ctx, callerID, req.TargetUserID, req); err != nil {
		return nil, err
	}

	factors, err := s.kratos.ListFactors(ctx, req.TargetUserID)
	if err != nil {
		return nil, kratosError(err, "failed to list second factors")
	}

	removed := 0
	for _, f := range factors {
		if err := s.kratos.DeleteFactor(ctx, req.TargetUserID, f.Type); err != nil {
			s.logger.Errorf("failed to delete %s factor of %s: %v", f.Type, req.TargetUserID, err)
			continue
		}
		removed++
	}

	if removed == 0 && len(factors) > 0 {
		return nil, apierror.Upstream(errors.New("no factor could be deleted"), "failed to reset second factors")
	}

	s.logger.Security().FactorsReset(callerID, req.TargetUserID, removed)

	return &ResetFactorsResult{FactorsRemoved: removed}, nil
}

func NewService(authz AuthzInterface, k KratosClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.authz = authz
	s.kratos = k
	s.validator = validation.NewValidator()

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
