// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	KratosAdminURL string `envconfig:"kratos_admin_url" required:"true"`

	// PublicURL is the base URL of the UI, used to build invitation links
	PublicURL          string        `envconfig:"public_url" required:"true"`
	InvitationLifetime time.Duration `envconfig:"invitation_lifetime" default:"168h"`

	NotificationTimeout time.Duration `envconfig:"notification_timeout" default:"30s"`

	SMTPHost     string `envconfig:"smtp_host"`
	SMTPPort     int    `envconfig:"smtp_port" default:"587"`
	SMTPUsername string `envconfig:"smtp_username"`
	SMTPPassword string `envconfig:"smtp_password"`
	SMTPFrom     string `envconfig:"smtp_from" default:"no-reply@localhost"`
	SMTPInsecure bool   `envconfig:"smtp_insecure" default:"false"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	// AuthenticationEnabled switches from the trusted identity header to JWT bearer tokens
	AuthenticationEnabled bool     `envconfig:"authentication_enabled" default:"false"`
	JWTIssuer             string   `envconfig:"authentication_issuer"`
	JWTJWKSURL            string   `envconfig:"authentication_jwks_url"`
	JWTAllowedSubjects    []string `envconfig:"authentication_allowed_subjects"`
	JWTRequiredScope      string   `envconfig:"authentication_required_scope"`

	AcceptRateLimit int `envconfig:"accept_rate_limit" default:"5"`
	AcceptRateBurst int `envconfig:"accept_rate_burst" default:"10"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`
}
