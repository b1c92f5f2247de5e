// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/canonical/provisioning-service/internal/apierror"
)

type payload struct {
	Name     string `json:"name" validate:"required,max=10"`
	Slug     string `json:"slug" validate:"required,slug"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func fieldNames(err error) []string {
	var e *apierror.Error
	if !errors.As(err, &e) {
		return nil
	}

	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedFields []string
		expectedErr    bool
	}{
		{
			name: "Valid",
			body: `{"name":"Acme","slug":"acme-co","email":"a@b.io"}`,
		},
		{
			name:           "All violations reported together",
			body:           `{"name":"A very long name","slug":"Bad Slug","email":"nope","password":"123"}`,
			expectedFields: []string{"name", "slug", "email", "password"},
			expectedErr:    true,
		},
		{
			name:           "Unknown field",
			body:           `{"name":"Acme","slug":"acme","email":"a@b.io","role":"admin"}`,
			expectedFields: []string{"role"},
			expectedErr:    true,
		},
		{
			name:           "Wrong type",
			body:           `{"name":42,"slug":"acme","email":"a@b.io"}`,
			expectedFields: []string{"name"},
			expectedErr:    true,
		},
		{
			name:           "Every mistyped field and tag violation together",
			body:           `{"name":1,"slug":2,"email":"x"}`,
			expectedFields: []string{"name", "slug", "email"},
			expectedErr:    true,
		},
		{
			name:           "Unknown field does not hide tag violations",
			body:           `{"bogus":1,"email":"not-an-email"}`,
			expectedFields: []string{"bogus", "name", "slug", "email"},
			expectedErr:    true,
		},
		{
			name:           "Several unknown fields",
			body:           `{"name":"Acme","slug":"acme","email":"a@b.io","role":"admin","active":true}`,
			expectedFields: []string{"active", "role"},
			expectedErr:    true,
		},
		{
			name:        "Not an object",
			body:        `["acme"]`,
			expectedErr: true,
		},
		{
			name:        "Empty body",
			body:        ``,
			expectedErr: true,
		},
		{
			name:        "Malformed",
			body:        `{"name":`,
			expectedErr: true,
		},
	}

	v := NewValidator()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := v.DecodeAndValidate(strings.NewReader(tt.body), &p)

			if !tt.expectedErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !apierror.IsKind(err, apierror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}

			got := fieldNames(err)
			if len(got) != len(tt.expectedFields) {
				t.Fatalf("expected fields %v, got %v", tt.expectedFields, got)
			}
			for i := range got {
				if got[i] != tt.expectedFields[i] {
					t.Fatalf("expected fields %v, got %v", tt.expectedFields, got)
				}
			}
		})
	}
}

func TestSlugRule(t *testing.T) {
	for slug, valid := range map[string]bool{
		"acme":      true,
		"acme-2026": true,
		"-acme":     false,
		"acme--co":  false,
		"Acme":      false,
		"acme_co":   false,
	} {
		if got := slugRegex.MatchString(slug); got != valid {
			t.Errorf("slug %q: expected %v, got %v", slug, valid, got)
		}
	}
}

func TestDecodeSkipsExternalFields(t *testing.T) {
	var p payload
	err := NewValidator().Decode(strings.NewReader(`{"bogus":1,"slug":"acme","email":"a@b.io"}`), &p, "name")

	got := fieldNames(err)
	if len(got) != 1 || got[0] != "bogus" {
		t.Fatalf("expected only the unknown field, got %v", got)
	}
}

func TestDecodeValidBodyLeavesTagsToStruct(t *testing.T) {
	var p payload
	if err := NewValidator().Decode(strings.NewReader(`{"name":"Acme","slug":"Bad Slug","email":"a@b.io"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Slug != "Bad Slug" {
		t.Fatalf("expected decoded slug, got %q", p.Slug)
	}
}
