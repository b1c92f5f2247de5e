// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/canonical/provisioning-service/internal/identity"
	"github.com/canonical/provisioning-service/pkg/provisioning"
)

func TestAPIClientDo(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		reply        string
		expectedErr  string
		expectedKind string
		expectedID   string
	}{
		{
			name:       "data envelope decoded",
			status:     http.StatusCreated,
			reply:      `{"status":201,"message":"organization created","data":{"organizationId":"org-1","invitationId":"inv-1"}}`,
			expectedID: "org-1",
		},
		{
			name:         "error envelope returned as apiError",
			status:       http.StatusConflict,
			reply:        `{"status":409,"message":"slug already taken","kind":"conflict"}`,
			expectedErr:  "slug already taken",
			expectedKind: "conflict",
		},
		{
			name:        "non json error body",
			status:      http.StatusBadGateway,
			reply:       `bad gateway`,
			expectedErr: "status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotHeader, gotAuth, gotContentType string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get(identity.HeaderName)
				gotAuth = r.Header.Get("Authorization")
				gotContentType = r.Header.Get("Content-Type")

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			c := newAPIClient(srv.URL, "admin-1", "tok")
			res := new(provisioning.BootstrapResult)
			err := c.do(context.Background(), http.MethodPost, "/api/v0/organizations", &provisioning.BootstrapRequest{OrganizationName: "Acme"}, res)

			if gotHeader != "admin-1" || gotAuth != "Bearer tok" || gotContentType != "application/json" {
				t.Fatalf("unexpected request headers %q %q %q", gotHeader, gotAuth, gotContentType)
			}

			if tt.expectedErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expectedErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expectedErr, err)
				}

				var apiErr *apiError
				if tt.expectedKind != "" && (!errors.As(err, &apiErr) || apiErr.Kind != tt.expectedKind) {
					t.Fatalf("expected apiError of kind %s, got %v", tt.expectedKind, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.OrganizationID != tt.expectedID {
				t.Fatalf("expected organization %s, got %s", tt.expectedID, res.OrganizationID)
			}
		})
	}
}

func TestAPIErrorListsFields(t *testing.T) {
	e := new(apiError)
	if err := json.Unmarshal([]byte(`{"status":400,"message":"invalid request","kind":"validation","fields":[{"field":"adminEmail","message":"must be a valid email"}]}`), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(e.Error(), "adminEmail: must be a valid email") {
		t.Fatalf("expected field message in %q", e.Error())
	}
}

func TestNewAPIClientNormalizesEndpoint(t *testing.T) {
	c := newAPIClient("localhost:8080/", "", "")

	if c.endpoint != "http://localhost:8080" {
		t.Fatalf("expected normalized endpoint, got %s", c.endpoint)
	}
}

func TestValidateMigrateArgs(t *testing.T) {
	tests := []struct {
		args  []string
		valid bool
	}{
		{args: nil, valid: true},
		{args: []string{"up"}, valid: true},
		{args: []string{"status"}, valid: true},
		{args: []string{"down", "20260105100000"}, valid: true},
		{args: []string{"sideways"}, valid: false},
		{args: []string{"up", "3"}, valid: false},
		{args: []string{"down", "-1"}, valid: false},
		{args: []string{"down", "1", "2"}, valid: false},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			err := validateMigrateArgs(&cobra.Command{}, tt.args)

			if (err == nil) != tt.valid {
				t.Fatalf("expected valid=%v, got %v", tt.valid, err)
			}
		})
	}
}
