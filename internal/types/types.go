// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

type Organization struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Invitation struct {
	ID             string           `db:"id"`
	Email          string           `db:"email"`
	Role           string           `db:"role"`
	OrganizationID string           `db:"organization_id"`
	CreatedBy      string           `db:"created_by"`
	Phone          string           `db:"phone"`
	Status         InvitationStatus `db:"status"`
	ExpiresAt      time.Time        `db:"expires_at"`
	AcceptedAt     *time.Time       `db:"accepted_at"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}

// Expired reports whether the invitation is past its expiry, regardless of
// the stored status.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Usable reports whether the invitation can still be accepted at now.
func (i *Invitation) Usable(now time.Time) bool {
	return i.Status == InvitationPending && !i.Expired(now)
}

type Membership struct {
	ID             string    `db:"id"`
	OrganizationID string    `db:"organization_id"`
	IdentityID     string    `db:"identity_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type Profile struct {
	ID             string    `db:"id"`
	IdentityID     string    `db:"identity_id"`
	OrganizationID string    `db:"organization_id"`
	Name           string    `db:"name"`
	Phone          string    `db:"phone"`
	AvatarURL      string    `db:"avatar_url"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type RoleGrant struct {
	ID         string    `db:"id"`
	IdentityID string    `db:"identity_id"`
	Role       string    `db:"role"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Identity is the subset of a credential subsystem record the service reads.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Factor is an enrolled second-factor credential of an identity.
type Factor struct {
	IdentityID string
	Type       string
}
