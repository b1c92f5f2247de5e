// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/provisioning-service/internal/http/types"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/internal/validation"
	"github.com/canonical/provisioning-service/pkg/authentication"
)

type API struct {
	service   ServiceInterface
	validator *validation.Validator

	// acceptMiddlewares guard the public acceptance endpoint
	acceptMiddlewares chi.Middlewares

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/api/v0/organizations", a.handleBootstrap)
	mux.Get("/api/v0/invitations/{id}", a.handleGetInvitation)
	mux.With(a.acceptMiddlewares...).Post("/api/v0/invitations/{id}/accept", a.handleAccept)
	mux.Post("/api/v0/invitations/{id}/resend", a.handleResend)
	mux.Post("/api/v0/invitations/{id}/cancel", a.handleCancel)
}

func (a *API) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.handleBootstrap")
	defer span.End()

	req := new(BootstrapRequest)
	if err := a.validator.Decode(r.Body, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	callerID, _ := authentication.GetUserID(ctx)

	res, err := a.service.BootstrapOrganization(ctx, callerID, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusCreated, "organization created", res)
}

func (a *API) handleGetInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.handleGetInvitation")
	defer span.End()

	view, err := a.service.GetInvitation(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, "invitation", view)
}

func (a *API) handleAccept(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.handleAccept")
	defer span.End()

	req := new(AcceptRequest)
	if err := a.validator.Decode(r.Body, req, "invitationId"); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	// the path is authoritative
	req.InvitationID = chi.URLParam(r, "id")

	res, err := a.service.AcceptInvitation(ctx, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, "invitation accepted", res)
}

func (a *API) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.handleResend")
	defer span.End()

	callerID, _ := authentication.GetUserID(ctx)

	res, err := a.service.ResendInvitation(ctx, callerID, chi.URLParam(r, "id"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, "invitation resent", res)
}

func (a *API) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.handleCancel")
	defer span.End()

	callerID, _ := authentication.GetUserID(ctx)

	if err := a.service.CancelInvitation(ctx, callerID, chi.URLParam(r, "id")); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, "invitation cancelled", map[string]bool{"success": true})
}

func NewAPI(
	service ServiceInterface,
	acceptMiddlewares chi.Middlewares,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *API {
	a := new(API)

	a.service = service
	a.validator = validation.NewValidator()
	a.acceptMiddlewares = acceptMiddlewares

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
