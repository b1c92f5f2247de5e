// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identities

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

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Delete("/api/v0/identities/{id}", a.handleDelete)
	mux.Patch("/api/v0/identities/{id}", a.handleUpdate)
	mux.Post("/api/v0/identities/{id}/factors/reset", a.handleResetFactors)
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identities.API.handleDelete")
	defer span.End()

	callerID, _ := authentication.GetUserID(ctx)

	err := a.service.DeleteIdentity(ctx, callerID, &DeleteRequest{TargetUserID: chi.URLParam(r, "id")})
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, "identity deleted", map[string]bool{"success": true})
}

func (a *API) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identities.API.handleUpdate")
	defer span.End()

	req := new(UpdateRequest)
	if err := a.validator.Decode(r.Body, req, "targetUserId"); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	req.TargetUserID = chi.URLParam(r, "id")
	callerID, _ := authentication.GetUserID(ctx)

	if err := a.service.UpdateIdentity(ctx, callerID, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, "identity updated", map[string]bool{"success": true})
}

func (a *API) handleResetFactors(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "identities.API.handleResetFactors")
	defer span.End()

	callerID, _ := authentication.GetUserID(ctx)

	res, err := a.service.ResetSecondFactor(ctx, callerID, &ResetFactorsRequest{TargetUserID: chi.URLParam(r, "id")})
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResponse(w, http.StatusOK, "second factors reset", res)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service
	a.validator = validation.NewValidator()

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
