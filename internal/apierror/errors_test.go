// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindExpired, http.StatusGone},
		{KindForbidden, http.StatusForbidden},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindUpstream, http.StatusBadGateway},
		{KindPartialSuccess, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := StatusCode(tt.kind); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	cause := errors.New("duplicate key")
	err := fmt.Errorf("bootstrap: %w", Conflict(fmt.Errorf("%w: %w", ErrDuplicateSlug, cause), "slug taken"))

	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatal("expected sentinel to be reachable")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if !errors.Is(err, Conflict(nil, "")) {
		t.Fatal("expected kind match through errors.Is")
	}
	if errors.Is(err, NotFound("")) {
		t.Fatal("unexpected kind match")
	}
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %q", KindOf(err))
	}
	if KindOf(cause) != "" {
		t.Fatalf("expected empty kind for plain error")
	}
}

func TestErrorMessage(t *testing.T) {
	if msg := NotFound("invitation not found").Error(); msg != "invitation not found" {
		t.Errorf("unexpected message %q", msg)
	}
	if msg := Upstream(errors.New("timeout"), "kratos").Error(); msg != "kratos: timeout" {
		t.Errorf("unexpected message %q", msg)
	}
}
