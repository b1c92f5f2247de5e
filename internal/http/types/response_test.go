// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/provisioning-service/internal/apierror"
	"github.com/canonical/provisioning-service/internal/logging"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedKind    apierror.Kind
		expectedMessage string
	}{
		{
			name:            "Validation with fields",
			err:             apierror.Validation("invalid request payload", apierror.FieldError{Field: "slug", Message: "is required"}),
			expectedStatus:  http.StatusBadRequest,
			expectedKind:    apierror.KindValidation,
			expectedMessage: "invalid request payload",
		},
		{
			name:            "Wrapped expired",
			err:             fmt.Errorf("accept: %w", apierror.Expired("invitation expired")),
			expectedStatus:  http.StatusGone,
			expectedKind:    apierror.KindExpired,
			expectedMessage: "invitation expired",
		},
		{
			name:            "Upstream hides cause",
			err:             apierror.Upstream(errors.New("dial tcp 10.0.0.1:4434"), "credential subsystem unavailable"),
			expectedStatus:  http.StatusBadGateway,
			expectedKind:    apierror.KindUpstream,
			expectedMessage: "credential subsystem unavailable",
		},
		{
			name:            "Unknown error",
			err:             errors.New("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteError(w, tt.err, logging.NewNoopLogger())

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var body ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if body.Status != tt.expectedStatus || body.Kind != tt.expectedKind || body.Message != tt.expectedMessage {
				t.Fatalf("unexpected body %+v", body)
			}

			if tt.expectedKind == apierror.KindValidation && len(body.Fields) != 1 {
				t.Fatalf("expected field errors, got %+v", body.Fields)
			}
		})
	}
}

func TestWriteResponse(t *testing.T) {
	w := httptest.NewRecorder()

	WriteResponse(w, http.StatusCreated, "created", map[string]string{"id": "org-1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body struct {
		Status int               `json:"status"`
		Data   map[string]string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != http.StatusCreated || body.Data["id"] != "org-1" {
		t.Fatalf("unexpected body %+v", body)
	}
}
