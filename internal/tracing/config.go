// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"github.com/canonical/provisioning-service/internal/logging"
)

// Config selects the span exporter, the gRPC endpoint wins over the HTTP one
// and stdout is used when neither is set.
type Config struct {
	OtelHTTPEndpoint string
	OtelGRPCEndpoint string
	Logger           logging.LoggerInterface

	Enabled bool
}

func NewConfig(enabled bool, otelGRPCEndpoint, otelHTTPEndpoint string, logger logging.LoggerInterface) *Config {
	return &Config{
		OtelGRPCEndpoint: otelGRPCEndpoint,
		OtelHTTPEndpoint: otelHTTPEndpoint,
		Logger:           logger,
		Enabled:          enabled,
	}
}

func NewNoopConfig() *Config {
	return &Config{Logger: logging.NewNoopLogger()}
}
