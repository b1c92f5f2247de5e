// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/logging"
)

// Response is the envelope of every successful reply.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse complies with the Admin UI standard json response for errors.
type ErrorResponse struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Kind    apierror.Kind         `json:"kind,omitempty"`
	Fields  []apierror.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteResponse(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Status: status, Message: message, Data: data})
}

// WriteError renders err as an ErrorResponse. Errors outside the taxonomy are
// logged and reported as internal errors without leaking their message.
func WriteError(w http.ResponseWriter, err error, logger logging.LoggerInterface) {
	var e *apierror.Error
	if !errors.As(err, &e) {
		logger.Errorf("unhandled error: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Status:  http.StatusInternalServerError,
			Message: "internal server error",
		})
		return
	}

	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Errorf("request failed: %v", err)
	}

	message := e.Message
	if message == "" {
		message = http.StatusText(status)
	}

	writeJSON(w, status, ErrorResponse{
		Status:  status,
		Message: message,
		Kind:    e.Kind,
		Fields:  e.Fields,
	})
}

// WriteErrorStatus renders a bare ErrorResponse for failures raised by the
// transport itself, such as rate limiting.
func WriteErrorStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: status, Message: message})
}
