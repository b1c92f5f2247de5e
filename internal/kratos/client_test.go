// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func identityJSON(id, email, name string, credentials map[string]any) map[string]any {
	ret := map[string]any{
		"id":         id,
		"schema_id":  "default",
		"schema_url": "http://kratos/schemas/default",
		"state":      "active",
		"traits":     map[string]any{"email": email, "name": name},
	}
	if credentials != nil {
		ret["credentials"] = credentials
	}
	return ret
}

func TestGetIdentityByEmail(t *testing.T) {
	tests := []struct {
		name        string
		body        []any
		expectedID  string
		expectedErr error
	}{
		{
			name:       "Found",
			body:       []any{identityJSON("user-1", "a@b.io", "Ana", nil)},
			expectedID: "user-1",
		},
		{
			name:        "Not found",
			body:        []any{},
			expectedErr: ErrIdentityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/admin/identities" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("credentials_identifier"); got != "a@b.io" {
					t.Errorf("unexpected identifier %q", got)
				}
				writeJSON(w, http.StatusOK, tt.body)
			}))

			i, err := c.GetIdentityByEmail(context.Background(), "a@b.io")

			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
			if tt.expectedErr == nil && (i.ID != tt.expectedID || i.Name != "Ana") {
				t.Fatalf("unexpected identity %+v", i)
			}
		})
	}
}

func TestCreateIdentity(t *testing.T) {
	t.Run("Pre-verified password identity", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/admin/identities" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}

			var body struct {
				Traits      map[string]string `json:"traits"`
				Credentials struct {
					Password struct {
						Config struct {
							Password string `json:"password"`
						} `json:"config"`
					} `json:"password"`
				} `json:"credentials"`
				VerifiableAddresses []struct {
					Value    string `json:"value"`
					Verified bool   `json:"verified"`
				} `json:"verifiable_addresses"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}

			if body.Traits["email"] != "a@b.io" || body.Traits["name"] != "Ana" {
				t.Errorf("unexpected traits %v", body.Traits)
			}
			if body.Credentials.Password.Config.Password != "secret1" {
				t.Errorf("password not forwarded")
			}
			if len(body.VerifiableAddresses) != 1 || !body.VerifiableAddresses[0].Verified {
				t.Errorf("expected a verified address, got %+v", body.VerifiableAddresses)
			}

			writeJSON(w, http.StatusCreated, identityJSON("user-1", "a@b.io", "Ana", nil))
		}))

		i, err := c.CreateIdentity(context.Background(), "a@b.io", "Ana", "secret1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i.ID != "user-1" {
			t.Fatalf("unexpected identity %+v", i)
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": map[string]any{"code": 409, "message": "exists"}})
		}))

		_, err := c.CreateIdentity(context.Background(), "a@b.io", "Ana", "secret1")
		if !errors.Is(err, ErrIdentityExists) {
			t.Fatalf("expected ErrIdentityExists, got %v", err)
		}
	})
}

func TestUpdateIdentityMergesTraits(t *testing.T) {
	var put map[string]any

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, identityJSON("user-1", "old@b.io", "Ana", nil))
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			writeJSON(w, http.StatusOK, identityJSON("user-1", "new@b.io", "Ana", nil))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))

	email := "new@b.io"
	if err := c.UpdateIdentity(context.Background(), "user-1", IdentityUpdate{Email: &email}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	traits, _ := put["traits"].(map[string]any)
	if traits["email"] != "new@b.io" || traits["name"] != "Ana" {
		t.Fatalf("unexpected traits %v", traits)
	}
	if put["state"] != "active" {
		t.Fatalf("expected state to be preserved, got %v", put["state"])
	}
	if _, ok := put["credentials"]; ok {
		t.Fatal("credentials must not be sent without a password")
	}
}

func TestListFactors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, identityJSON("user-1", "a@b.io", "Ana", map[string]any{
			"password": map[string]any{"type": "password"},
			"totp":     map[string]any{"type": "totp"},
			"webauthn": map[string]any{"type": "webauthn"},
		}))
	}))

	factors, err := c.ListFactors(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(factors) != 2 || factors[0].Type != "totp" || factors[1].Type != "webauthn" {
		t.Fatalf("unexpected factors %+v", factors)
	}
}

func TestIdentityLookupNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected only the identity lookup, got %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "missing"}})
	}))

	if _, err := c.ListFactors(context.Background(), "user-1"); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound from ListFactors, got %v", err)
	}

	password := "s3cret1"
	if err := c.UpdateIdentity(context.Background(), "user-1", IdentityUpdate{Password: &password}); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound from UpdateIdentity, got %v", err)
	}
}

func TestDeleteIdentityNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": map[string]any{"code": 404, "message": "missing"}})
	}))

	if err := c.DeleteIdentity(context.Background(), "user-1"); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestDeleteFactorRejectsPassword(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	if err := c.DeleteFactor(context.Background(), "user-1", "password"); err == nil {
		t.Fatal("expected an error")
	}
}
