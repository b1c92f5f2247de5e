// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"time"
)

type BootstrapRequest struct {
	OrganizationName string `json:"organizationName" validate:"required,max=255"`
	OrganizationSlug string `json:"organizationSlug" validate:"required,max=63,slug"`
	AdminName        string `json:"adminName" validate:"required,max=255"`
	AdminEmail       string `json:"adminEmail" validate:"required,email,max=320"`
	AdminPhone       string `json:"adminPhone,omitempty" validate:"omitempty,e164"`
}

type BootstrapResult struct {
	OrganizationID string `json:"organizationId"`
	InvitationID   string `json:"invitationId"`
}

type AcceptRequest struct {
	// InvitationID is taken from the request path
	InvitationID string `json:"invitationId" validate:"required,uuid"`
	Name         string `json:"name" validate:"required,max=255"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
}

type AcceptResult struct {
	IdentityID string `json:"identityId"`
}

type ResendResult struct {
	Email string `json:"email"`
}

// InvitationView is the public rendition of an invitation shown on the
// acceptance page.
type InvitationView struct {
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	OrganizationName string    `json:"organizationName"`
	Status           string    `json:"status"`
	ExpiresAt        time.Time `json:"expiresAt"`
	Valid            bool      `json:"valid"`
}
