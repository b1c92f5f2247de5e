// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/provisioning-service/internal/apierror"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// maxBodyBytes bounds request payloads.
const maxBodyBytes = 1 << 20

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names instead of struct field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates s and aggregates every violation into one validation error.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierror.Validation(err.Error())
	}

	fields := make([]apierror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierror.FieldError{Field: fe.Field(), Message: message(fe)})
	}

	return apierror.Validation("invalid request payload", fields...)
}

// Decode reads a JSON object into dst, a pointer to a struct. Unknown keys
// and mistyped values are collected for every key, and when any is found the
// tag violations of the remaining fields are reported in the same error.
// external names the fields filled from elsewhere (the request path) that
// must not be reported as missing.
func (v *Validator) Decode(r io.Reader, dst any, external ...string) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return apierror.Validation("failed to read request body")
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return apierror.Validation("request body is empty")
	}

	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &values); err != nil {
		return decodeError(err)
	}

	target := reflect.ValueOf(dst).Elem()
	index := jsonFields(target.Type())

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]apierror.FieldError, 0)
	reported := make(map[string]bool)
	for _, name := range external {
		reported[name] = true
	}

	for _, key := range keys {
		i, ok := index[key]
		if !ok {
			fields = append(fields, apierror.FieldError{Field: key, Message: "unknown field"})
			reported[key] = true
			continue
		}

		f := target.Field(i)
		if err := json.Unmarshal(values[key], f.Addr().Interface()); err != nil {
			fields = append(fields, apierror.FieldError{Field: key, Message: "must be of type " + typeName(f.Type())})
			reported[key] = true
		}
	}

	if len(fields) == 0 {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(v.v.Struct(dst), &verrs) {
		for _, fe := range verrs {
			if !reported[fe.Field()] {
				fields = append(fields, apierror.FieldError{Field: fe.Field(), Message: message(fe)})
			}
		}
	}

	return apierror.Validation("invalid request payload", fields...)
}

// DecodeAndValidate is Decode followed by Struct.
func (v *Validator) DecodeAndValidate(r io.Reader, dst any) error {
	if err := v.Decode(r, dst); err != nil {
		return err
	}

	return v.Struct(dst)
}

// jsonFields maps the json name of every exported field of t to its index.
func jsonFields(t reflect.Type) map[string]int {
	index := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		index[name] = i
	}
	return index
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return apierror.Validation(fmt.Sprintf("malformed json at offset %d", syntaxErr.Offset))
	case errors.As(err, &typeErr):
		return apierror.Validation("request body must be a json object")
	default:
		return apierror.Validation(err.Error())
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	case "slug":
		return "must contain only lowercase letters, digits and single hyphens"
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid":
		return "must be a valid uuid"
	case "e164":
		return "must be a phone number in E.164 format"
	case "required_without":
		return "is required when " + fe.Param() + " is not set"
	default:
		return "failed on the " + fe.Tag() + " rule"
	}
}
