// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/internal/version"
)

type pinger func(context.Context) error

func (p pinger) Ping(ctx context.Context) error {
	return p(ctx)
}

func TestAlive(t *testing.T) {
	tests := []struct {
		name             string
		ping             error
		expectedCode     int
		expectedStatus   string
		expectedDatabase string
	}{
		{"database up", nil, http.StatusOK, "ok", "up"},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded", "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			NewAPI(
				pinger(func(context.Context) error { return tt.ping }),
				tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger(),
			).RegisterEndpoints(router)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v0/status", nil))

			if w.Code != tt.expectedCode {
				t.Fatalf("expected %d, got %d", tt.expectedCode, w.Code)
			}

			var resp struct {
				Data Status `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Data.Status != tt.expectedStatus || resp.Data.Database != tt.expectedDatabase || resp.Data.Version != version.Version {
				t.Fatalf("unexpected status %+v", resp.Data)
			}
		})
	}
}
