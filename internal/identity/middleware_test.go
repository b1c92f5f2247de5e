// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/pkg/authentication"
)

func TestHTTPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		expectedID string
		expectedOK bool
	}{
		{name: "header present", header: "user-1", expectedID: "user-1", expectedOK: true},
		{name: "header missing", header: "", expectedID: "", expectedOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMiddleware(tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())

			var (
				gotID string
				gotOK bool
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, gotOK = authentication.GetUserID(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}

			m.HTTPMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

			if gotID != tt.expectedID || gotOK != tt.expectedOK {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tt.expectedID, tt.expectedOK, gotID, gotOK)
			}
		})
	}
}
