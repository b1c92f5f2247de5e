// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/provisioning-service/internal/apierror"
	httptypes "github.com/canonical/provisioning-service/internal/http/types"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/pkg/authentication"
)

func withCaller(id string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != "" {
				r = r.WithContext(authentication.WithUserID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(svc ServiceInterface, callerID string, acceptMiddlewares ...func(http.Handler) http.Handler) http.Handler {
	router := chi.NewRouter()
	router.Use(withCaller(callerID))

	NewAPI(svc, acceptMiddlewares, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test"), logging.NewNoopLogger()).
		RegisterEndpoints(router)

	return router
}

func TestHandleBootstrap(t *testing.T) {
	tests := []struct {
		name           string
		callerID       string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name:     "created",
			callerID: "admin-1",
			body:     `{"organizationName":"Acme","organizationSlug":"acme","adminName":"A. Admin","adminEmail":"a@acme.com"}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().BootstrapOrganization(gomock.Any(), "admin-1", &BootstrapRequest{
					OrganizationName: "Acme",
					OrganizationSlug: "acme",
					AdminName:        "A. Admin",
					AdminEmail:       "a@acme.com",
				}).Return(&BootstrapResult{OrganizationID: testOrgID, InvitationID: testInvitationID}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:     "anonymous",
			callerID: "",
			body:     `{"organizationName":"Acme","organizationSlug":"acme","adminName":"A. Admin","adminEmail":"a@acme.com"}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().BootstrapOrganization(gomock.Any(), "", gomock.Any()).
					Return(&BootstrapResult{OrganizationID: testOrgID, InvitationID: testInvitationID}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown field",
			body:           `{"organizationName":"Acme","tenant":"x"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"organizationName":`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "slug taken",
			body: `{"organizationName":"Acme","organizationSlug":"acme","adminName":"A. Admin","adminEmail":"a@acme.com"}`,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().BootstrapOrganization(gomock.Any(), "", gomock.Any()).
					Return(nil, apierror.Conflict(apierror.ErrDuplicateSlug, "organization slug is already taken"))
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockServiceInterface(ctrl)
			tt.setupMocks(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/organizations", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			newTestRouter(svc, tt.callerID).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleAcceptUsesPathID(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMockServiceInterface(ctrl)

	svc.EXPECT().AcceptInvitation(gomock.Any(), &AcceptRequest{
		InvitationID: testInvitationID,
		Name:         "New Member",
		Password:     "s3cret1",
	}).Return(&AcceptResult{IdentityID: "user-1"}, nil)

	guarded := false
	guard := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guarded = true
			next.ServeHTTP(w, r)
		})
	}

	body := `{"invitationId":"ignored","name":"New Member","password":"s3cret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v0/invitations/"+testInvitationID+"/accept", strings.NewReader(body))
	w := httptest.NewRecorder()

	newTestRouter(svc, "", guard).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !guarded {
		t.Fatal("accept middlewares were not applied")
	}

	var resp struct {
		Data AcceptResult `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.IdentityID != "user-1" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandleAcceptErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedKind   apierror.Kind
	}{
		{"already used", apierror.Conflict(apierror.ErrAlreadyUsed, "invitation has already been accepted"), http.StatusConflict, apierror.KindConflict},
		{"expired", apierror.Expired("invitation has expired"), http.StatusGone, apierror.KindExpired},
		{"not found", apierror.NotFound("invitation not found"), http.StatusNotFound, apierror.KindNotFound},
		{"upstream", apierror.Upstream(nil, "failed to create identity"), http.StatusBadGateway, apierror.KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockServiceInterface(ctrl)
			svc.EXPECT().AcceptInvitation(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			body := `{"name":"New Member","password":"s3cret1"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v0/invitations/"+testInvitationID+"/accept", strings.NewReader(body))
			w := httptest.NewRecorder()

			newTestRouter(svc, "").ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp httptypes.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Kind != tt.expectedKind {
				t.Fatalf("expected kind %s, got %s", tt.expectedKind, resp.Kind)
			}
		})
	}
}

func TestHandleInvitationAdminEndpoints(t *testing.T) {
	t.Run("resend", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockServiceInterface(ctrl)
		svc.EXPECT().ResendInvitation(gomock.Any(), "admin-1", testInvitationID).Return(&ResendResult{Email: "new@acme.io"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v0/invitations/"+testInvitationID+"/resend", nil)
		w := httptest.NewRecorder()

		newTestRouter(svc, "admin-1").ServeHTTP(w, req)

		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "new@acme.io") {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("cancel", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockServiceInterface(ctrl)
		svc.EXPECT().CancelInvitation(gomock.Any(), "admin-1", testInvitationID).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v0/invitations/"+testInvitationID+"/cancel", nil)
		w := httptest.NewRecorder()

		newTestRouter(svc, "admin-1").ServeHTTP(w, req)

		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("resend forbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockServiceInterface(ctrl)
		svc.EXPECT().ResendInvitation(gomock.Any(), "op-1", testInvitationID).Return(nil, apierror.Forbidden("insufficient role"))

		req := httptest.NewRequest(http.MethodPost, "/api/v0/invitations/"+testInvitationID+"/resend", nil)
		w := httptest.NewRecorder()

		newTestRouter(svc, "op-1").ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("get", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockServiceInterface(ctrl)
		svc.EXPECT().GetInvitation(gomock.Any(), testInvitationID).Return(&InvitationView{Email: "new@acme.io", Status: "pending", Valid: true}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v0/invitations/"+testInvitationID, nil)
		w := httptest.NewRecorder()

		newTestRouter(svc, "").ServeHTTP(w, req)

		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"valid":true`) {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestHandlersReportEveryInvalidField(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		expectedFields []string
	}{
		{
			name:           "bootstrap",
			path:           "/api/v0/organizations",
			body:           `{"organizationName":1,"organizationSlug":2,"adminEmail":"x"}`,
			expectedFields: []string{"organizationName", "organizationSlug", "adminName", "adminEmail"},
		},
		{
			name:           "accept does not require the path id in the body",
			path:           "/api/v0/invitations/" + testInvitationID + "/accept",
			body:           `{"bogus":1,"password":"123"}`,
			expectedFields: []string{"bogus", "name", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockServiceInterface(ctrl)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			newTestRouter(svc, "").ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}

			var resp httptypes.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(resp.Fields) != len(tt.expectedFields) {
				t.Fatalf("expected fields %v, got %+v", tt.expectedFields, resp.Fields)
			}
			for i, f := range resp.Fields {
				if f.Field != tt.expectedFields[i] {
					t.Fatalf("expected fields %v, got %+v", tt.expectedFields, resp.Fields)
				}
			}
		})
	}
}
