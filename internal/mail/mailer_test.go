// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
)

type fakeSender struct {
	msgs []*gomail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, msgs ...*gomail.Msg) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func newTestMailer(t *testing.T, s sender) *Mailer {
	t.Helper()

	m, err := newMailer("no-reply@acme.io", s, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())
	if err != nil {
		t.Fatalf("newMailer: %v", err)
	}
	return m
}

func TestSendInvitation(t *testing.T) {
	s := new(fakeSender)
	m := newTestMailer(t, s)

	err := m.SendInvitation(context.Background(), InvitationEmail{
		To:               "ceo@acme.io",
		OrganizationName: "Acme",
		Role:             "admin",
		Link:             "https://app.acme.io/invite/inv-1",
		ExpiresAt:        time.Date(2026, 1, 12, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(s.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(s.msgs))
	}

	msg := s.msgs[0]
	if to := msg.GetToString(); len(to) != 1 || !strings.Contains(to[0], "ceo@acme.io") {
		t.Errorf("unexpected recipients %v", to)
	}
	if subject := msg.GetGenHeader(gomail.HeaderSubject); len(subject) != 1 || subject[0] != "You have been invited to join Acme" {
		t.Errorf("unexpected subject %v", subject)
	}
}

func TestSendInvitationFailure(t *testing.T) {
	m := newTestMailer(t, &fakeSender{err: errors.New("relay down")})

	err := m.SendInvitation(context.Background(), InvitationEmail{To: "ceo@acme.io", OrganizationName: "Acme"})
	if err == nil || !strings.Contains(err.Error(), "relay down") {
		t.Fatalf("expected relay error, got %v", err)
	}
}

func TestSendInvitationInvalidRecipient(t *testing.T) {
	s := new(fakeSender)
	m := newTestMailer(t, s)

	if err := m.SendInvitation(context.Background(), InvitationEmail{To: "not an email"}); err == nil {
		t.Fatal("expected an error")
	}
	if len(s.msgs) != 0 {
		t.Fatal("nothing should be sent")
	}
}

func TestSendNewMemberWithoutRecipients(t *testing.T) {
	s := new(fakeSender)
	m := newTestMailer(t, s)

	if err := m.SendNewMember(context.Background(), NewMemberEmail{OrganizationName: "Acme"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.msgs) != 0 {
		t.Fatal("nothing should be sent")
	}
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewLoggerFromZap(zap.New(core))

	m, err := NewLogMailer(tracing.NewNoopTracer(), logger)
	if err != nil {
		t.Fatalf("NewLogMailer: %v", err)
	}

	err = m.SendInvitation(context.Background(), InvitationEmail{
		To:               "ceo@acme.io",
		OrganizationName: "Acme",
		Role:             "admin",
		Link:             "https://app.acme.io/invite/inv-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("email not sent, smtp disabled").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}

	body, _ := entries[0].ContextMap()["body"].(string)
	if !strings.Contains(body, "https://app.acme.io/invite/inv-1") || !strings.Contains(body, "Acme") {
		t.Errorf("unexpected body %q", body)
	}
}
