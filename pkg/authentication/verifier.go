// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
)

var (
	ErrNoAccessPolicy = errors.New("unauthorized: no access policy configured")
	ErrAccessDenied   = errors.New("unauthorized: missing required scope or subject not allowed")

	otelHTTPClient = http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
)

// AccessPolicy decides which verified tokens may call the API. A token
// passes when its subject is allowed or it carries the required scope.
type AccessPolicy struct {
	AllowedSubjects []string
	RequiredScope   string
}

func (p AccessPolicy) empty() bool {
	return len(p.AllowedSubjects) == 0 && p.RequiredScope == ""
}

func (p AccessPolicy) allows(c tokenClaims) bool {
	if slices.Contains(p.AllowedSubjects, c.Subject) {
		return true
	}

	return p.RequiredScope != "" && slices.Contains(c.scopes(), p.RequiredScope)
}

type tokenClaims struct {
	Subject string   `json:"sub"`
	Scope   string   `json:"scope"`
	Scopes  []string `json:"scp"`
}

// scopes merges the space separated scope claim with the scp array.
func (c tokenClaims) scopes() []string {
	return append(strings.Fields(c.Scope), c.Scopes...)
}

type JWTVerifier struct {
	verifier *oidc.IDTokenVerifier
	policy   AccessPolicy

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (string, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}

	claims := tokenClaims{}
	if err := token.Claims(&claims); err != nil {
		v.logger.Debugf("Failed to extract claims: %v", err)
		return "", err
	}

	return v.authorize(claims)
}

func (v *JWTVerifier) authorize(claims tokenClaims) (string, error) {
	if v.policy.empty() {
		v.logger.Security().AuthzFailure(claims.Subject, "jwt_api_access")
		return "", ErrNoAccessPolicy
	}

	if !v.policy.allows(claims) {
		v.logger.Security().AuthzFailure(claims.Subject, "jwt_api_access")
		return "", ErrAccessDenied
	}

	return claims.Subject, nil
}

func NewJWTVerifier(
	verifier *oidc.IDTokenVerifier,
	policy AccessPolicy,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	return &JWTVerifier{
		verifier: verifier,
		policy:   policy,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// newIDTokenVerifier uses the JWKS URL when given and OIDC discovery of the
// issuer otherwise.
func newIDTokenVerifier(ctx context.Context, discover func(context.Context, string) (ProviderInterface, error), issuer, jwksURL string) (*oidc.IDTokenVerifier, error) {
	ctx = oidc.ClientContext(ctx, &otelHTTPClient)
	config := &oidc.Config{SkipClientIDCheck: true}

	if jwksURL != "" {
		return oidc.NewVerifier(issuer, oidc.NewRemoteKeySet(ctx, jwksURL), config), nil
	}

	provider, err := discover(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %v", err)
	}

	return provider.Verifier(config), nil
}

func discoverProvider(ctx context.Context, issuer string) (ProviderInterface, error) {
	return oidc.NewProvider(ctx, issuer)
}

// NewJWTAuthenticator builds the verifier used by the bearer token middleware.
func NewJWTAuthenticator(
	ctx context.Context,
	issuer string,
	jwksURL string,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	if issuer == "" {
		return nil, fmt.Errorf("issuer is required for JWT authentication")
	}

	if jwksURL != "" {
		logger.Infof("Using manual JWKS URL: %s", jwksURL)
	} else {
		logger.Infof("Using OIDC discovery for issuer: %s", issuer)
	}

	verifier, err := newIDTokenVerifier(ctx, discoverProvider, issuer, jwksURL)
	if err != nil {
		return nil, err
	}

	policy := AccessPolicy{AllowedSubjects: allowedSubjects, RequiredScope: requiredScope}
	if policy.empty() {
		logger.Warn("JWT authentication has no allowed subjects or required scope, every token will be rejected")
	}

	return NewJWTVerifier(verifier, policy, tracer, monitor, logger), nil
}
