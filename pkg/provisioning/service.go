// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/authorization"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/mail"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/storage"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/internal/types"
	"github.com/canonical/provisioning-service/internal/validation"
)

const (
	DefaultInvitationLifetime = 7 * 24 * time.Hour

	anonymousCaller = "anonymous"
)

var _ ServiceInterface = (*Service)(nil)

type Config struct {
	// PublicURL is the base of the links sent in invitation emails
	PublicURL          string
	InvitationLifetime time.Duration
}

type Service struct {
	storage    StorageInterface
	authz      AuthzInterface
	kratos     KratosClientInterface
	mailer     MailerInterface
	dispatcher DispatcherInterface

	resolver  *IdentityResolver
	linker    *TenantLinker
	validator *validation.Validator

	publicURL          string
	invitationLifetime time.Duration
	now                func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	cfg Config,
	storage StorageInterface,
	authz AuthzInterface,
	kratos KratosClientInterface,
	mailer MailerInterface,
	dispatcher DispatcherInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	lifetime := cfg.InvitationLifetime
	if lifetime <= 0 {
		lifetime = DefaultInvitationLifetime
	}

	return &Service{
		storage:            storage,
		authz:              authz,
		kratos:             kratos,
		mailer:             mailer,
		dispatcher:         dispatcher,
		resolver:           NewIdentityResolver(kratos, tracer, logger),
		linker:             NewTenantLinker(storage, tracer, logger),
		validator:          validation.NewValidator(),
		publicURL:          cfg.PublicURL,
		invitationLifetime: lifetime,
		now:                time.Now,
		tracer:             tracer,
		monitor:            monitor,
		logger:             logger,
	}
}

func (s *Service) invitationLink(invitationID string) string {
	link, err := url.JoinPath(s.publicURL, "invitations", invitationID)
	if err != nil {
		return s.publicURL + "/invitations/" + invitationID
	}
	return link
}

// checkPending rejects invitations whose stored status is not pending.
func checkPending(inv *types.Invitation) error {
	switch inv.Status {
	case types.InvitationPending:
		return nil
	case types.InvitationAccepted:
		return apierror.Conflict(apierror.ErrAlreadyUsed, "invitation has already been accepted")
	case types.InvitationExpired:
		return apierror.Expired("invitation has expired")
	default:
		return apierror.Conflict(fmt.Errorf("invitation is %s", inv.Status), "invitation is no longer valid")
	}
}

// checkUsable also rejects pending invitations past their expiry.
func checkUsable(inv *types.Invitation, now time.Time) error {
	if err := checkPending(inv); err != nil {
		return err
	}

	if inv.Expired(now) {
		return apierror.Expired("invitation has expired")
	}

	return nil
}

func (s *Service) getInvitation(ctx context.Context, id string) (*types.Invitation, error) {
	inv, err := s.storage.GetInvitationByID(ctx, id)
	if err == nil {
		return inv, nil
	}

	if errors.Is(err, storage.ErrNotFound) {
		return nil, apierror.NotFound("invitation not found")
	}

	return nil, apierror.Upstream(err, "failed to load invitation")
}

// BootstrapOrganization creates an organization and the invitation for its
// first administrator. Anyone may bootstrap the very first organization,
// afterwards the caller needs to be admin or above.
func (s *Service) BootstrapOrganization(ctx context.Context, callerID string, req *BootstrapRequest) (*BootstrapResult, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.BootstrapOrganization")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	count, err := s.storage.CountOrganizations(ctx)
	if err != nil {
		return nil, apierror.Upstream(err, "failed to count organizations")
	}

	if count > 0 {
		if err := s.authz.RequireRoleAtLeast(ctx, callerID, authorization.RoleAdmin); err != nil {
			return nil, err
		}
	}

	var (
		org *types.Organization
		inv *types.Invitation
	)

	saga := NewSaga("BootstrapOrganization", s.tracer, s.logger)

	// concurrent anonymous callers can all see zero organizations, only one may proceed
	if count == 0 {
		saga.Step("claim_bootstrap", func(ctx context.Context) (UndoFunc, error) {
			claimed, err := s.storage.ClaimBootstrap(ctx)
			if err != nil {
				return nil, apierror.Upstream(err, "failed to claim bootstrap")
			}

			if !claimed {
				return nil, apierror.Conflict(apierror.ErrBootstrapTaken, "the first organization is already being created")
			}

			return func(ctx context.Context) error {
				return s.storage.ReleaseBootstrap(ctx)
			}, nil
		})
	}

	err = saga.
		Step("create_organization", func(ctx context.Context) (UndoFunc, error) {
			created, err := s.storage.CreateOrganization(ctx, &types.Organization{
				Name:   req.OrganizationName,
				Slug:   req.OrganizationSlug,
				Active: true,
			})

			if errors.Is(err, storage.ErrDuplicateKey) {
				return nil, apierror.Conflict(
					fmt.Errorf("%w: %w", apierror.ErrDuplicateSlug, err),
					"organization slug is already taken, choose a different one",
				)
			}

			if err != nil {
				return nil, apierror.Upstream(err, "failed to create organization")
			}

			org = created

			return func(ctx context.Context) error {
				return s.storage.DeleteOrganization(ctx, created.ID)
			}, nil
		}).
		Step("create_invitation", func(ctx context.Context) (UndoFunc, error) {
			created, err := s.storage.CreateInvitation(ctx, &types.Invitation{
				Email:          req.AdminEmail,
				Role:           authorization.RoleAdmin.String(),
				OrganizationID: org.ID,
				CreatedBy:      callerID,
				Phone:          req.AdminPhone,
				ExpiresAt:      s.now().Add(s.invitationLifetime),
			})

			if err != nil {
				return nil, apierror.Upstream(err, "failed to create invitation")
			}

			inv = created

			return nil, nil
		}).
		Run(ctx)

	if err != nil {
		return nil, err
	}

	actor := callerID
	if actor == "" {
		actor = anonymousCaller
	}
	s.logger.Security().AdminAction(actor, "bootstrap_organization", org.ID)

	s.dispatchInvitation(ctx, inv, org.Name)

	return &BootstrapResult{OrganizationID: org.ID, InvitationID: inv.ID}, nil
}

// AcceptInvitation resolves the identity for the invited email, links it to
// the organization and marks the invitation accepted. Every step is
// idempotent, a failed call can be resubmitted as is.
func (s *Service) AcceptInvitation(ctx context.Context, req *AcceptRequest) (*AcceptResult, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.AcceptInvitation")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	inv, err := s.getInvitation(ctx, req.InvitationID)
	if err != nil {
		return nil, err
	}

	if err := checkUsable(inv, s.now()); err != nil {
		return nil, err
	}

	identityID, isNew, err := s.resolver.ResolveIdentity(ctx, inv.Email, req.Name, req.Password)
	if err != nil {
		return nil, err
	}

	err = s.linker.EnsureTenantLink(ctx, Link{
		IdentityID:     identityID,
		OrganizationID: inv.OrganizationID,
		Role:           inv.Role,
		Name:           req.Name,
		Phone:          inv.Phone,
	})
	if err != nil {
		return nil, err
	}

	if err := s.markAccepted(ctx, inv.ID); err != nil {
		return nil, err
	}

	if isNew {
		s.logger.Security().UserCreated("invitation:"+inv.ID, identityID)
		s.dispatchNewMember(ctx, inv, identityID, req.Name)
	}

	return &AcceptResult{IdentityID: identityID}, nil
}

func (s *Service) markAccepted(ctx context.Context, id string) error {
	err := s.storage.MarkInvitationAccepted(ctx, id, s.now())
	if err == nil {
		return nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return apierror.Upstream(err, "failed to mark invitation accepted")
	}

	// the row is no longer pending, a concurrent acceptance may have won
	inv, err := s.getInvitation(ctx, id)
	if err != nil {
		return err
	}

	if inv.Status == types.InvitationAccepted {
		return nil
	}

	return apierror.Conflict(fmt.Errorf("invitation is %s", inv.Status), "invitation is no longer valid")
}

// ResendInvitation pushes the expiry of a pending invitation forward and sends
// the email again. The invitation keeps its id.
func (s *Service) ResendInvitation(ctx context.Context, callerID, invitationID string) (*ResendResult, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.ResendInvitation")
	defer span.End()

	if err := s.authz.RequireRoleAtLeast(ctx, callerID, authorization.RoleAdmin); err != nil {
		return nil, err
	}

	inv, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	// a pending invitation past its expiry can still be resent
	if err := checkPending(inv); err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.invitationLifetime)

	if err := s.storage.MarkInvitationPending(ctx, inv.ID, expiresAt); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierror.Conflict(err, "only pending invitations can be resent")
		}
		return nil, apierror.Upstream(err, "failed to refresh invitation")
	}

	inv.ExpiresAt = expiresAt

	org, err := s.storage.GetOrganizationByID(ctx, inv.OrganizationID)
	if err != nil {
		return nil, apierror.Upstream(err, "failed to load organization")
	}

	s.logger.Security().AdminAction(callerID, "resend_invitation", inv.ID)

	s.dispatchInvitation(ctx, inv, org.Name)

	return &ResendResult{Email: inv.Email}, nil
}

func (s *Service) CancelInvitation(ctx context.Context, callerID, invitationID string) error {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.CancelInvitation")
	defer span.End()

	if err := s.authz.RequireRoleAtLeast(ctx, callerID, authorization.RoleAdmin); err != nil {
		return err
	}

	inv, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}

	if err := checkPending(inv); err != nil {
		return err
	}

	if err := s.storage.CancelInvitation(ctx, inv.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apierror.Conflict(err, "only pending invitations can be cancelled")
		}
		return apierror.Upstream(err, "failed to cancel invitation")
	}

	s.logger.Security().AdminAction(callerID, "cancel_invitation", inv.ID)

	return nil
}

func (s *Service) GetInvitation(ctx context.Context, invitationID string) (*InvitationView, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.GetInvitation")
	defer span.End()

	inv, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	org, err := s.storage.GetOrganizationByID(ctx, inv.OrganizationID)
	if err != nil {
		return nil, apierror.Upstream(err, "failed to load organization")
	}

	now := s.now()

	status := inv.Status
	if status == types.InvitationPending && inv.Expired(now) {
		status = types.InvitationExpired
	}

	return &InvitationView{
		Email:            inv.Email,
		Role:             inv.Role,
		OrganizationName: org.Name,
		Status:           string(status),
		ExpiresAt:        inv.ExpiresAt,
		Valid:            inv.Usable(now),
	}, nil
}

func (s *Service) dispatchInvitation(ctx context.Context, inv *types.Invitation, organizationName string) {
	email := mail.InvitationEmail{
		To:               inv.Email,
		OrganizationName: organizationName,
		Role:             inv.Role,
		Link:             s.invitationLink(inv.ID),
		ExpiresAt:        inv.ExpiresAt,
	}

	s.dispatcher.Go(ctx, "invitation_email", func(ctx context.Context) error {
		return s.mailer.SendInvitation(ctx, email)
	})
}

// dispatchNewMember tells the organization admins, other than the new member,
// that someone joined.
func (s *Service) dispatchNewMember(ctx context.Context, inv *types.Invitation, identityID, name string) {
	s.dispatcher.Go(ctx, "new_member_email", func(ctx context.Context) error {
		org, err := s.storage.GetOrganizationByID(ctx, inv.OrganizationID)
		if err != nil {
			return fmt.Errorf("failed to load organization: %w", err)
		}

		ids, err := s.storage.ListOrganizationMembersWithRoles(ctx, inv.OrganizationID, authorization.RolesAtLeast(authorization.RoleAdmin))
		if err != nil {
			return fmt.Errorf("failed to list organization admins: %w", err)
		}

		admins := make([]string, 0, len(ids))
		for _, id := range ids {
			if id != identityID {
				admins = append(admins, id)
			}
		}

		if len(admins) == 0 {
			return nil
		}

		identities, err := s.kratos.ListIdentitiesByIDs(ctx, admins)
		if err != nil {
			return fmt.Errorf("failed to resolve admin emails: %w", err)
		}

		to := make([]string, 0, len(identities))
		for _, i := range identities {
			if i.Email != "" {
				to = append(to, i.Email)
			}
		}

		return s.mailer.SendNewMember(ctx, mail.NewMemberEmail{
			To:               to,
			OrganizationName: org.Name,
			MemberName:       name,
			MemberEmail:      inv.Email,
			Role:             inv.Role,
		})
	})
}
