// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/pkg/identities"
	"github.com/canonical/provisioning-service/pkg/metrics"
	"github.com/canonical/provisioning-service/pkg/provisioning"
	"github.com/canonical/provisioning-service/pkg/status"
)

// RouterConfig carries the collaborators of the HTTP surface.
type RouterConfig struct {
	Provisioning provisioning.ServiceInterface
	Identities   identities.ServiceInterface

	// Caller attaches the authenticated caller, if any, to the request context
	Caller func(http.Handler) http.Handler
	// AcceptLimiter guards the public invitation acceptance endpoint
	AcceptLimiter *RateLimiter

	DB          status.PingerInterface
	CORSOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		middleware.Recoverer,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(origins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(cfg.DB, tracer, monitor, logger).RegisterEndpoints(router)

	acceptMiddlewares := make(chi.Middlewares, 0)
	if cfg.AcceptLimiter != nil {
		acceptMiddlewares = append(acceptMiddlewares, cfg.AcceptLimiter.Middleware)
	}

	router.Group(func(r chi.Router) {
		if cfg.Caller != nil {
			r.Use(cfg.Caller)
		}

		provisioning.NewAPI(cfg.Provisioning, acceptMiddlewares, tracer, monitor, logger).RegisterEndpoints(r)
		identities.NewAPI(cfg.Identities, tracer, monitor, logger).RegisterEndpoints(r)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
