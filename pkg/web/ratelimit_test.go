// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canonical/provisioning-service/internal/logging"
)

func TestRateLimiterPerIP(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	l := NewRateLimiter(1, 2, logging.NewNoopLogger())
	l.now = func() time.Time { return now }

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(remote, xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/invitations/x/accept", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1:1234", ""); code != http.StatusOK {
			t.Fatalf("request %d within burst rejected with %d", i, code)
		}
	}

	if code := call("10.0.0.1:5678", ""); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 past burst, got %d", code)
	}

	if code := call("10.0.0.2:1234", ""); code != http.StatusOK {
		t.Fatalf("other clients must not share the bucket, got %d", code)
	}

	if code := call("10.0.0.9:1234", "192.168.0.1, 10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("forwarded client should be limited, got %d", code)
	}

	now = now.Add(time.Second)

	if code := call("10.0.0.1:1234", ""); code != http.StatusOK {
		t.Fatalf("token should refill after a second, got %d", code)
	}
}

func TestRateLimiterIgnoresSpoofedForwardedEntries(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	l := NewRateLimiter(1, 2, logging.NewNoopLogger())
	l.now = func() time.Time { return now }

	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	spoofed := []string{"198.51.100.1", "198.51.100.2", "198.51.100.3", "198.51.100.4"}
	codes := make([]int, 0, len(spoofed))
	for _, first := range spoofed {
		req := httptest.NewRequest(http.MethodPost, "/api/v0/invitations/x/accept", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		req.Header.Set("X-Forwarded-For", first+", 203.0.113.7")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	expected := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range expected {
		if codes[i] != expected[i] {
			t.Fatalf("request %d: expected %d, got %d", i, expected[i], codes[i])
		}
	}
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	l := NewRateLimiter(1, 1, logging.NewNoopLogger())
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(bucketTTL / 2)
	l.allow("10.0.0.2")

	now = now.Add(bucketTTL/2 + time.Second)
	l.Sweep()

	if _, ok := l.buckets["10.0.0.1"]; ok {
		t.Fatal("idle bucket should be dropped")
	}
	if _, ok := l.buckets["10.0.0.2"]; !ok {
		t.Fatal("recent bucket should be kept")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		remote   string
		xff      string
		expected string
	}{
		{"remote addr", "10.0.0.1:1234", "", "10.0.0.1"},
		{"forwarded", "10.0.0.1:1234", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain uses last hop", "10.0.0.1:1234", " 198.51.100.1 , 203.0.113.7 ", "203.0.113.7"},
		{"empty last hop", "10.0.0.1:1234", "203.0.113.7, ", "10.0.0.1"},
		{"no port", "10.0.0.1", "", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}

			if got := clientIP(req); got != tt.expected {
				t.Fatalf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
