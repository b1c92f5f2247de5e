// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package kratos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	ory "github.com/ory/client-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/internal/types"
)

const (
	defaultSchemaID = "default"
	stateActive     = "active"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrIdentityExists   = errors.New("identity already exists")
)

// SecondFactorTypes are the credential types removed by a factor reset.
var SecondFactorTypes = []string{"totp", "webauthn", "lookup_secret"}

// IdentityUpdate carries the optional changes applied by UpdateIdentity.
// Nil fields are left untouched.
type IdentityUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

type ClientInterface interface {
	GetIdentityByEmail(ctx context.Context, email string) (*types.Identity, error)
	CreateIdentity(ctx context.Context, email, name, password string) (*types.Identity, error)
	UpdateIdentity(ctx context.Context, id string, update IdentityUpdate) error
	DeleteIdentity(ctx context.Context, id string) error
	ListIdentitiesByIDs(ctx context.Context, ids []string) ([]types.Identity, error)
	ListFactors(ctx context.Context, id string) ([]types.Factor, error)
	DeleteFactor(ctx context.Context, id, factorType string) error
}

var _ ClientInterface = (*Client)(nil)

type Client struct {
	client  *ory.APIClient
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewClient(kratosAdminURL string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Client {
	conf := ory.NewConfiguration()
	conf.Servers = ory.ServerConfigurations{{URL: kratosAdminURL}}
	conf.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   10 * time.Second,
	}

	return &Client{
		client:  ory.NewAPIClient(conf),
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func statusCode(r *http.Response) int {
	if r == nil {
		return 0
	}
	return r.StatusCode
}

// setAvailability reports whether kratos answered at all.
func (c *Client) setAvailability(r *http.Response, err error) {
	available := 1.0
	if err != nil && (r == nil || r.StatusCode >= http.StatusInternalServerError) {
		available = 0
	}
	_ = c.monitor.SetDependencyAvailability(map[string]string{"component": "kratos"}, available)
}

func toIdentity(i *ory.Identity) *types.Identity {
	ret := &types.Identity{ID: i.GetId()}

	traits, ok := i.GetTraits().(map[string]interface{})
	if !ok {
		return ret
	}

	if email, ok := traits["email"].(string); ok {
		ret.Email = email
	}
	if name, ok := traits["name"].(string); ok {
		ret.Name = name
	}

	return ret
}

func passwordCredentials(password string) *ory.IdentityWithCredentials {
	return &ory.IdentityWithCredentials{
		Password: &ory.IdentityWithCredentialsPassword{
			Config: &ory.IdentityWithCredentialsPasswordConfig{
				Password: ory.PtrString(password),
			},
		},
	}
}

func (c *Client) GetIdentityByEmail(ctx context.Context, email string) (*types.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.GetIdentityByEmail")
	defer span.End()

	// NOTE: we are setting an empty page token because of https://github.com/ory/sdk/issues/461
	ids, r, err := c.client.IdentityAPI.ListIdentities(ctx).CredentialsIdentifier(email).PageToken("").Execute()
	c.setAvailability(r, err)

	if err != nil {
		if statusCode(r) == http.StatusNotFound {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}

	if len(ids) == 0 {
		return nil, ErrIdentityNotFound
	}

	// credentials identifiers are unique in kratos
	return toIdentity(&ids[0]), nil
}

// CreateIdentity registers a password identity whose email is already
// verified, since receiving the invitation proves ownership.
func (c *Client) CreateIdentity(ctx context.Context, email, name, password string) (*types.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.CreateIdentity")
	defer span.End()

	now := time.Now().UTC()

	body := ory.CreateIdentityBody{
		SchemaId: defaultSchemaID,
		Traits: map[string]interface{}{
			"email": email,
			"name":  name,
		},
		Credentials: passwordCredentials(password),
		State:       ory.PtrString(stateActive),
		VerifiableAddresses: []ory.VerifiableIdentityAddress{
			{
				Value:      email,
				Via:        "email",
				Verified:   true,
				Status:     "completed",
				VerifiedAt: &now,
			},
		},
	}

	identity, r, err := c.client.IdentityAPI.CreateIdentity(ctx).CreateIdentityBody(body).Execute()
	c.setAvailability(r, err)

	if err != nil {
		if statusCode(r) == http.StatusConflict {
			return nil, ErrIdentityExists
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return toIdentity(identity), nil
}

// UpdateIdentity reads the current identity and writes it back with the
// requested changes applied.
func (c *Client) UpdateIdentity(ctx context.Context, id string, update IdentityUpdate) error {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.UpdateIdentity")
	defer span.End()

	current, err := c.fetch(ctx, id)
	if err != nil {
		return err
	}

	traits := map[string]interface{}{}
	if t, ok := current.GetTraits().(map[string]interface{}); ok {
		for k, v := range t {
			traits[k] = v
		}
	}

	if update.Email != nil {
		traits["email"] = *update.Email
	}
	if update.Name != nil {
		traits["name"] = *update.Name
	}

	state := current.GetState()
	if state == "" {
		state = stateActive
	}

	body := ory.UpdateIdentityBody{
		SchemaId:       current.GetSchemaId(),
		State:          state,
		Traits:         traits,
		MetadataPublic: current.MetadataPublic,
		MetadataAdmin:  current.MetadataAdmin,
	}

	if update.Password != nil {
		body.Credentials = passwordCredentials(*update.Password)
	}

	_, r, err := c.client.IdentityAPI.UpdateIdentity(ctx, id).UpdateIdentityBody(body).Execute()
	c.setAvailability(r, err)

	if err != nil {
		switch statusCode(r) {
		case http.StatusNotFound:
			return ErrIdentityNotFound
		case http.StatusConflict:
			return ErrIdentityExists
		}
		return fmt.Errorf("failed to update identity: %w", err)
	}

	return nil
}

func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.DeleteIdentity")
	defer span.End()

	r, err := c.client.IdentityAPI.DeleteIdentity(ctx, id).Execute()
	c.setAvailability(r, err)

	if err != nil {
		if statusCode(r) == http.StatusNotFound {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	return nil
}

// fetch loads the admin view of an identity, credentials included.
func (c *Client) fetch(ctx context.Context, id string) (*ory.Identity, error) {
	identity, r, err := c.client.IdentityAPI.GetIdentity(ctx, id).Execute()
	c.setAvailability(r, err)

	if err != nil {
		if statusCode(r) == http.StatusNotFound {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return identity, nil
}

func (c *Client) ListIdentitiesByIDs(ctx context.Context, ids []string) ([]types.Identity, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.ListIdentitiesByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	identities, r, err := c.client.IdentityAPI.ListIdentities(ctx).Ids(ids).PageToken("").Execute()
	c.setAvailability(r, err)

	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}

	ret := make([]types.Identity, 0, len(identities))
	for i := range identities {
		ret = append(ret, *toIdentity(&identities[i]))
	}

	return ret, nil
}

// ListFactors returns the second-factor credentials enrolled by the identity.
func (c *Client) ListFactors(ctx context.Context, id string) ([]types.Factor, error) {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.ListFactors")
	defer span.End()

	identity, err := c.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	var factors []types.Factor
	for _, t := range SecondFactorTypes {
		if _, ok := identity.GetCredentials()[t]; ok {
			factors = append(factors, types.Factor{IdentityID: id, Type: t})
		}
	}

	return factors, nil
}

func (c *Client) DeleteFactor(ctx context.Context, id, factorType string) error {
	ctx, span := c.tracer.Start(ctx, "kratos.Client.DeleteFactor")
	defer span.End()

	if !slices.Contains(SecondFactorTypes, factorType) {
		return fmt.Errorf("unsupported factor type %q", factorType)
	}

	r, err := c.client.IdentityAPI.DeleteIdentityCredentials(ctx, id, factorType).Execute()
	c.setAvailability(r, err)

	if err != nil {
		if statusCode(r) == http.StatusNotFound {
			return ErrIdentityNotFound
		}
		return fmt.Errorf("failed to delete %s credentials: %w", factorType, err)
	}

	return nil
}
