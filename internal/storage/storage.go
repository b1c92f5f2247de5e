// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/canonical/provisioning-service/internal/db"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/internal/types"
)

var _ StorageInterface = (*Storage)(nil)

var (
	organizationColumns = []string{"id", "name", "slug", "active", "created_at", "updated_at"}
	invitationColumns   = []string{"id", "email", "role", "organization_id", "created_by", "phone", "status", "expires_at", "accepted_at", "created_at", "updated_at"}
	membershipColumns   = []string{"id", "organization_id", "identity_id", "created_at", "updated_at"}
	profileColumns      = []string{"id", "identity_id", "organization_id", "name", "phone", "avatar_url", "created_at", "updated_at"}
	roleGrantColumns    = []string{"id", "identity_id", "role", "created_at", "updated_at"}
)

type Storage struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewStorage(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Storage {
	s := new(Storage)

	s.db = c

	s.logger = logger
	s.tracer = tracer
	s.monitor = monitor

	return s
}

type scanner interface {
	Scan(...any) error
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func suffixReturning(columns []string) string {
	s := "RETURNING "
	for i, c := range columns {
		if i > 0 {
			s += ", "
		}
		s += c
	}
	return s
}

func scanOrganization(row scanner) (*types.Organization, error) {
	var o types.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Active, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanInvitation(row scanner) (*types.Invitation, error) {
	var (
		i          types.Invitation
		createdBy  sql.NullString
		phone      sql.NullString
		status     string
		acceptedAt sql.NullTime
	)

	err := row.Scan(
		&i.ID, &i.Email, &i.Role, &i.OrganizationID, &createdBy, &phone,
		&status, &i.ExpiresAt, &acceptedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	i.CreatedBy = createdBy.String
	i.Phone = phone.String
	i.Status = types.InvitationStatus(status)
	if acceptedAt.Valid {
		t := acceptedAt.Time
		i.AcceptedAt = &t
	}

	return &i, nil
}

func scanMembership(row scanner) (*types.Membership, error) {
	var m types.Membership
	if err := row.Scan(&m.ID, &m.OrganizationID, &m.IdentityID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanProfile(row scanner) (*types.Profile, error) {
	var (
		p         types.Profile
		orgID     sql.NullString
		phone     sql.NullString
		avatarURL sql.NullString
	)

	if err := row.Scan(&p.ID, &p.IdentityID, &orgID, &p.Name, &phone, &avatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	p.OrganizationID = orgID.String
	p.Phone = phone.String
	p.AvatarURL = avatarURL.String

	return &p, nil
}

func scanRoleGrant(row scanner) (*types.RoleGrant, error) {
	var g types.RoleGrant
	if err := row.Scan(&g.ID, &g.IdentityID, &g.Role, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowsAffected returns ErrNotFound when the statement touched no row.
func rowsAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to check rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) CreateOrganization(ctx context.Context, o *types.Organization) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateOrganization")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate organization ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("organizations").
		Columns("id", "name", "slug", "active").
		Values(id, o.Name, o.Slug, o.Active).
		Suffix(suffixReturning(organizationColumns)).
		QueryRowContext(ctx)

	created, err := scanOrganization(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to insert organization")
	}

	return created, nil
}

func (s *Storage) GetOrganizationByID(ctx context.Context, id string) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetOrganizationByID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(organizationColumns...).
		From("organizations").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	o, err := scanOrganization(row)
	if err != nil {
		return nil, notFound(err, "failed to get organization")
	}

	return o, nil
}

func (s *Storage) DeleteOrganization(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteOrganization")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Delete("organizations").
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)

	if err != nil {
		return wrapWriteError(err, "failed to delete organization")
	}

	return rowsAffected(res, "failed to delete organization")
}

func (s *Storage) CountOrganizations(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountOrganizations")
	defer span.End()

	var count int64
	err := s.db.Statement(ctx).
		Select("COUNT(*)").
		From("organizations").
		QueryRowContext(ctx).
		Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	return count, nil
}

// ClaimBootstrap takes the single bootstrap slot, it reports false when
// another caller already holds it.
func (s *Storage) ClaimBootstrap(ctx context.Context) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ClaimBootstrap")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Insert("bootstrap_once").
		Columns("id").
		Values(1).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ExecContext(ctx)

	if err != nil {
		return false, fmt.Errorf("failed to claim bootstrap: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim bootstrap: failed to check rows affected: %w", err)
	}

	return n == 1, nil
}

func (s *Storage) ReleaseBootstrap(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "storage.ReleaseBootstrap")
	defer span.End()

	_, err := s.db.Statement(ctx).
		Delete("bootstrap_once").
		Where(sq.Eq{"id": 1}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to release bootstrap: %w", err)
	}

	return nil
}

func (s *Storage) CreateInvitation(ctx context.Context, i *types.Invitation) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateInvitation")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("invitations").
		Columns("id", "email", "role", "organization_id", "created_by", "phone", "status", "expires_at").
		Values(id, i.Email, i.Role, i.OrganizationID, nullable(i.CreatedBy), nullable(i.Phone), string(types.InvitationPending), i.ExpiresAt).
		Suffix(suffixReturning(invitationColumns)).
		QueryRowContext(ctx)

	created, err := scanInvitation(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to insert invitation")
	}

	return created, nil
}

func (s *Storage) GetInvitationByID(ctx context.Context, id string) (*types.Invitation, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetInvitationByID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(invitationColumns...).
		From("invitations").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	i, err := scanInvitation(row)
	if err != nil {
		return nil, notFound(err, "failed to get invitation")
	}

	return i, nil
}

// MarkInvitationAccepted flips a pending invitation to accepted.
// Returns ErrNotFound if no pending invitation with that id exists.
func (s *Storage) MarkInvitationAccepted(ctx context.Context, id string, acceptedAt time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.MarkInvitationAccepted")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("invitations").
		Set("status", string(types.InvitationAccepted)).
		Set("accepted_at", acceptedAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "status": string(types.InvitationPending)}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark invitation accepted: %w", err)
	}

	return rowsAffected(res, "failed to mark invitation accepted")
}

// MarkInvitationPending refreshes the expiry of a pending invitation.
// Returns ErrNotFound if no pending invitation with that id exists.
func (s *Storage) MarkInvitationPending(ctx context.Context, id string, expiresAt time.Time) error {
	ctx, span := s.tracer.Start(ctx, "storage.MarkInvitationPending")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("invitations").
		Set("status", string(types.InvitationPending)).
		Set("expires_at", expiresAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "status": string(types.InvitationPending)}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to refresh invitation: %w", err)
	}

	return rowsAffected(res, "failed to refresh invitation")
}

func (s *Storage) CancelInvitation(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.CancelInvitation")
	defer span.End()

	res, err := s.db.Statement(ctx).
		Update("invitations").
		Set("status", string(types.InvitationCancelled)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "status": string(types.InvitationPending)}).
		ExecContext(ctx)

	if err != nil {
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}

	return rowsAffected(res, "failed to cancel invitation")
}

func (s *Storage) GetMembership(ctx context.Context, organizationID, identityID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetMembership")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(membershipColumns...).
		From("memberships").
		Where(sq.Eq{"organization_id": organizationID, "identity_id": identityID}).
		QueryRowContext(ctx)

	m, err := scanMembership(row)
	if err != nil {
		return nil, notFound(err, "failed to get membership")
	}

	return m, nil
}

func (s *Storage) CreateMembership(ctx context.Context, organizationID, identityID string) (*types.Membership, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateMembership")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate membership ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("memberships").
		Columns("id", "organization_id", "identity_id").
		Values(id, organizationID, identityID).
		Suffix(suffixReturning(membershipColumns)).
		QueryRowContext(ctx)

	m, err := scanMembership(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to add membership")
	}

	return m, nil
}

func (s *Storage) GetProfileByIdentityID(ctx context.Context, identityID string) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetProfileByIdentityID")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"identity_id": identityID}).
		QueryRowContext(ctx)

	p, err := scanProfile(row)
	if err != nil {
		return nil, notFound(err, "failed to get profile")
	}

	return p, nil
}

func (s *Storage) CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateProfile")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("profiles").
		Columns("id", "identity_id", "organization_id", "name", "phone", "avatar_url").
		Values(id, p.IdentityID, nullable(p.OrganizationID), p.Name, nullable(p.Phone), nullable(p.AvatarURL)).
		Suffix(suffixReturning(profileColumns)).
		QueryRowContext(ctx)

	created, err := scanProfile(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to insert profile")
	}

	return created, nil
}

// UpdateProfile overwrites the mutable fields of the profile owned by
// p.IdentityID. An empty phone leaves the stored phone untouched.
func (s *Storage) UpdateProfile(ctx context.Context, p *types.Profile) error {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateProfile")
	defer span.End()

	q := s.db.Statement(ctx).
		Update("profiles").
		Set("name", p.Name).
		Set("organization_id", nullable(p.OrganizationID)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"identity_id": p.IdentityID})

	if p.Phone != "" {
		q = q.Set("phone", p.Phone)
	}

	res, err := q.ExecContext(ctx)
	if err != nil {
		return wrapWriteError(err, "failed to update profile")
	}

	return rowsAffected(res, "failed to update profile")
}

func (s *Storage) GetRoleGrant(ctx context.Context, identityID, role string) (*types.RoleGrant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetRoleGrant")
	defer span.End()

	row := s.db.Statement(ctx).
		Select(roleGrantColumns...).
		From("role_grants").
		Where(sq.Eq{"identity_id": identityID, "role": role}).
		QueryRowContext(ctx)

	g, err := scanRoleGrant(row)
	if err != nil {
		return nil, notFound(err, "failed to get role grant")
	}

	return g, nil
}

func (s *Storage) CreateRoleGrant(ctx context.Context, identityID, role string) (*types.RoleGrant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateRoleGrant")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate role grant ID: %w", err)
	}

	row := s.db.Statement(ctx).
		Insert("role_grants").
		Columns("id", "identity_id", "role").
		Values(id, identityID, role).
		Suffix(suffixReturning(roleGrantColumns)).
		QueryRowContext(ctx)

	g, err := scanRoleGrant(row)
	if err != nil {
		return nil, wrapWriteError(err, "failed to insert role grant")
	}

	return g, nil
}

func (s *Storage) ListRolesByIdentityID(ctx context.Context, identityID string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListRolesByIdentityID")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("role").
		From("role_grants").
		Where(sq.Eq{"identity_id": identityID}).
		QueryContext(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list role grants: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("failed to scan role grant: %w", err)
		}
		roles = append(roles, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return roles, nil
}

// ListOrganizationMembersWithRoles returns the identity ids that are members of
// the organization and hold at least one of the given roles.
func (s *Storage) ListOrganizationMembersWithRoles(ctx context.Context, organizationID string, roles []string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListOrganizationMembersWithRoles")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select("DISTINCT m.identity_id").
		From("memberships m").
		Join("role_grants g ON g.identity_id = m.identity_id").
		Where(sq.Eq{"m.organization_id": organizationID, "g.role": roles}).
		QueryContext(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ids, nil
}
