// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
)

//go:embed templates
var templatesFS embed.FS

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Insecure disables STARTTLS, only meant for local relays
	Insecure bool
}

type InvitationEmail struct {
	To               string
	OrganizationName string
	Role             string
	Link             string
	ExpiresAt        time.Time
}

type NewMemberEmail struct {
	To               []string
	OrganizationName string
	MemberName       string
	MemberEmail      string
	Role             string
}

type MailerInterface interface {
	SendInvitation(context.Context, InvitationEmail) error
	SendNewMember(context.Context, NewMemberEmail) error
}

type sender interface {
	DialAndSendWithContext(context.Context, ...*gomail.Msg) error
}

type templates struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

var _ MailerInterface = (*Mailer)(nil)

type Mailer struct {
	from   string
	client sender

	invitation templates
	newMember  templates

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func loadTemplates(name string) (templates, error) {
	h, err := htmltemplate.ParseFS(templatesFS, "templates/"+name+".html")
	if err != nil {
		return templates{}, err
	}

	t, err := texttemplate.ParseFS(templatesFS, "templates/"+name+".txt")
	if err != nil {
		return templates{}, err
	}

	return templates{html: h, text: t}, nil
}

func (m *Mailer) message(to []string, subject string, tpl templates, data any) (*gomail.Msg, error) {
	msg := gomail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)

	if err := msg.SetBodyTextTemplate(tpl.text, data); err != nil {
		return nil, fmt.Errorf("failed to render text body: %w", err)
	}

	if err := msg.AddAlternativeHTMLTemplate(tpl.html, data); err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	return msg, nil
}

func (m *Mailer) send(ctx context.Context, msg *gomail.Msg) error {
	err := m.client.DialAndSendWithContext(ctx, msg)

	available := 1.0
	if err != nil {
		available = 0
	}
	_ = m.monitor.SetDependencyAvailability(map[string]string{"component": "smtp"}, available)

	return err
}

func (m *Mailer) SendInvitation(ctx context.Context, e InvitationEmail) error {
	ctx, span := m.tracer.Start(ctx, "mail.Mailer.SendInvitation")
	defer span.End()

	msg, err := m.message(
		[]string{e.To},
		fmt.Sprintf("You have been invited to join %s", e.OrganizationName),
		m.invitation,
		e,
	)
	if err != nil {
		return err
	}

	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	return nil
}

func (m *Mailer) SendNewMember(ctx context.Context, e NewMemberEmail) error {
	ctx, span := m.tracer.Start(ctx, "mail.Mailer.SendNewMember")
	defer span.End()

	if len(e.To) == 0 {
		return nil
	}

	msg, err := m.message(
		e.To,
		fmt.Sprintf("%s joined %s", e.MemberName, e.OrganizationName),
		m.newMember,
		e,
	)
	if err != nil {
		return err
	}

	if err := m.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send new member email: %w", err)
	}

	return nil
}

func newMailer(from string, client sender, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Mailer, error) {
	m := new(Mailer)

	m.from = from
	m.client = client

	m.tracer = tracer
	m.monitor = monitor
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

// NewMailer returns a Mailer delivering through the configured SMTP relay.
func NewMailer(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(15 * time.Second),
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	if cfg.Insecure {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return newMailer(cfg.From, client, tracer, monitor, logger)
}

// render executes the text template, used by the log mailer.
func render(tpl templates, data any) (string, error) {
	var b bytes.Buffer
	if err := tpl.text.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
