// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/tracing"
)

var _ MailerInterface = (*LogMailer)(nil)

// LogMailer writes rendered emails to the logger instead of sending them.
// Used when no SMTP relay is configured.
type LogMailer struct {
	invitation templates
	newMember  templates

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (m *LogMailer) SendInvitation(ctx context.Context, e InvitationEmail) error {
	_, span := m.tracer.Start(ctx, "mail.LogMailer.SendInvitation")
	defer span.End()

	body, err := render(m.invitation, e)
	if err != nil {
		return fmt.Errorf("failed to render invitation email: %w", err)
	}

	m.logger.Infow("email not sent, smtp disabled", "to", e.To, "template", "invitation", "body", body)

	return nil
}

func (m *LogMailer) SendNewMember(ctx context.Context, e NewMemberEmail) error {
	_, span := m.tracer.Start(ctx, "mail.LogMailer.SendNewMember")
	defer span.End()

	body, err := render(m.newMember, e)
	if err != nil {
		return fmt.Errorf("failed to render new member email: %w", err)
	}

	m.logger.Infow("email not sent, smtp disabled", "to", strings.Join(e.To, ","), "template", "new_member", "body", body)

	return nil
}

func NewLogMailer(tracer tracing.TracingInterface, logger logging.LoggerInterface) (*LogMailer, error) {
	m := new(LogMailer)

	m.tracer = tracer
	m.logger = logger

	var err error
	if m.invitation, err = loadTemplates("invitation"); err != nil {
		return nil, fmt.Errorf("failed to load invitation templates: %w", err)
	}
	if m.newMember, err = loadTemplates("new_member"); err != nil {
		return nil, fmt.Errorf("failed to load new member templates: %w", err)
	}

	return m, nil
}
