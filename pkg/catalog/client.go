// Package catalog is a client for the open metadata access services of a
// metadata server. Client exposes the generic create, update, delete and
// relationship operations; the façades in this package bind them to the
// element and relationship kinds of the asset owner service.
package catalog

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/odpi/egeria-sub150/internal/httpclient"
	"github.com/odpi/egeria-sub150/internal/rest"
	"github.com/odpi/egeria-sub150/internal/telemetry"
	"github.com/odpi/egeria-sub150/internal/validators"
	"github.com/odpi/egeria-sub150/pkg/api"
	"github.com/odpi/egeria-sub150/pkg/apierrors"
)

// Parameter names reported by validation failures
const (
	paramGUID             = "guid"
	paramAnchorGUID       = "anchorGUID"
	paramPrimaryGUID      = "primaryGUID"
	paramSecondaryGUID    = "secondaryGUID"
	paramRelationshipGUID = "relationshipGUID"
	paramRelationshipName = "relationshipName"
	paramStartingGUID     = "startingGUID"
	paramProperties       = "properties"
	paramQualifiedName    = "qualifiedName"
	paramName             = "name"
	paramTemplate         = "urlTemplate"
	paramCallerID         = "callerId"
)

// Client issues catalog requests against one metadata server.
// It holds no catalog state and is safe for concurrent use.
type Client struct {
	invoker         *rest.Invoker
	config          Config
	serviceRoot     string
	defaultPageSize int
	logger          *slog.Logger
}

// New creates a Client from cfg
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	httpOpts := []httpclient.Option{
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithHTTPClient(cfg.HTTPClient),
		httpclient.WithLogger(cfg.Logger),
	}
	if cfg.Credentials != nil {
		httpOpts = append(httpOpts, httpclient.WithCredentials(&httpclient.Credentials{
			User:     cfg.Credentials.User,
			Password: cfg.Credentials.Password,
			Token:    cfg.Credentials.Token,
		}))
	}
	if cfg.TracerProvider != nil {
		httpOpts = append(httpOpts, httpclient.WithTracerProvider(cfg.TracerProvider))
	}

	return newClient(cfg, httpclient.NewClient(httpOpts...))
}

// newClient wires a Client around an existing transport
func newClient(cfg Config, transport httpclient.Client) (*Client, error) {
	metrics, err := telemetry.NewClientMetrics(cfg.MeterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create client metrics: %w", err)
	}

	invokerOpts := []rest.Option{
		rest.WithLogger(cfg.Logger),
		rest.WithMetrics(metrics),
	}
	if cfg.TracerProvider != nil {
		invokerOpts = append(invokerOpts, rest.WithTracer(cfg.TracerProvider.Tracer(rest.TracerName)))
	}

	c := &Client{
		invoker:         rest.NewInvoker(transport, cfg.PlatformURL, cfg.ServerName, invokerOpts...),
		config:          cfg,
		serviceRoot:     ServiceRoot(cfg.ServiceURLName),
		defaultPageSize: cfg.DefaultPageSize,
		logger:          cfg.Logger,
	}

	c.logger.Debug("Catalog client created",
		"platform", cfg.PlatformURL,
		"server", cfg.ServerName,
		"service", cfg.ServiceURLName,
	)
	return c, nil
}

// ServiceRoot returns the URL template prefix of an access service. Its
// placeholders are {0} for the server name and {1} for the user id.
func ServiceRoot(serviceURLName string) string {
	return "/servers/{0}/open-metadata/access-services/" + serviceURLName + "/users/{1}"
}

// ServerName returns the metadata server the client talks to
func (c *Client) ServerName() string {
	return c.config.ServerName
}

// ServiceRoot returns the URL template prefix of the configured access service
func (c *Client) ServiceRoot() string {
	return c.serviceRoot
}

// CreateReferenceable creates an element and returns its GUID. The template
// receives the user id as {1}. A qualifiedName is required; creating a second
// element with the same qualifiedName is rejected by the server.
func (c *Client) CreateReferenceable(
	ctx context.Context, userID string, properties api.Properties, template string,
) (string, error) {
	const operation = "createReferenceable"

	if err := c.validateCreate(operation, userID, properties, template); err != nil {
		return "", err
	}

	resp, err := rest.Invoke[api.GUIDResponse](ctx, c.invoker, operation, http.MethodPost, template,
		api.ReferenceableRequestBody{Class: "ReferenceableRequestBody", Properties: properties},
		userID)
	if err != nil {
		return "", err
	}
	return resp.GUID, nil
}

// CreateReferenceableWithAnchor creates an element whose lifecycle is bound
// to anchorGUID and returns its GUID. Deleting the anchor deletes the element.
func (c *Client) CreateReferenceableWithAnchor(
	ctx context.Context, userID, anchorGUID string, properties api.Properties, template string,
) (string, error) {
	const operation = "createReferenceableWithAnchor"

	if err := c.validateCreate(operation, userID, properties, template); err != nil {
		return "", err
	}
	if err := validators.ValidateGUID(operation, anchorGUID, paramAnchorGUID); err != nil {
		return "", err
	}

	resp, err := rest.Invoke[api.GUIDResponse](ctx, c.invoker, operation, http.MethodPost, template,
		api.ReferenceableRequestBody{
			Class:      "ReferenceableRequestBody",
			AnchorGUID: anchorGUID,
			Properties: properties,
		},
		userID)
	if err != nil {
		return "", err
	}
	return resp.GUID, nil
}

// UpdateReferenceable updates the element guid. The template receives the
// GUID as {2} and isMergeUpdate as {3}. A full replace (isMergeUpdate false)
// must carry the qualifiedName.
func (c *Client) UpdateReferenceable(
	ctx context.Context, userID, guid string, isMergeUpdate bool, properties api.Properties, template string,
) error {
	const operation = "updateReferenceable"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return err
	}
	if err := validators.ValidateGUID(operation, guid, paramGUID); err != nil {
		return err
	}
	if err := validators.ValidateObject(operation, present(properties), paramProperties); err != nil {
		return err
	}
	if !isMergeUpdate {
		if err := validators.ValidateName(operation, properties.GetQualifiedName(), paramQualifiedName); err != nil {
			return err
		}
	}

	_, err := rest.Invoke[api.VoidResponse](ctx, c.invoker, operation, http.MethodPost, template,
		api.ReferenceableRequestBody{Class: "ReferenceableRequestBody", Properties: properties},
		userID, guid, isMergeUpdate)
	return err
}

// RemoveReferenceable deletes the element guid. The template receives the GUID as {2}.
func (c *Client) RemoveReferenceable(ctx context.Context, userID, guid, template string) error {
	const operation = "removeReferenceable"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return err
	}
	if err := validators.ValidateGUID(operation, guid, paramGUID); err != nil {
		return err
	}

	_, err := rest.Invoke[api.VoidResponse](ctx, c.invoker, operation, http.MethodPost, template,
		nil, userID, guid)
	return err
}

// GetReferenceable retrieves the element guid. The template receives the GUID as {2}.
func (c *Client) GetReferenceable(ctx context.Context, userID, guid, template string) (*api.Element, error) {
	const operation = "getReferenceable"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return nil, err
	}
	if err := validators.ValidateGUID(operation, guid, paramGUID); err != nil {
		return nil, err
	}

	resp, err := rest.Invoke[api.ElementResponse](ctx, c.invoker, operation, http.MethodGet, template,
		nil, userID, guid)
	if err != nil {
		return nil, err
	}
	if resp.Element == nil {
		err := apierrors.NewInvalidParameter(operation, paramGUID,
			"the server returned no element for %s", guid)
		err.HTTPCode = http.StatusNotFound
		return nil, err
	}
	return resp.Element, nil
}

// SetupRelationship creates the single relationship named relationshipName
// from primaryGUID to secondaryGUID, or updates it in place if it exists. The
// template receives primaryGUID as {2}, secondaryGUID as {3} and the
// relationship name as {4}. Properties are optional.
func (c *Client) SetupRelationship(
	ctx context.Context, userID, primaryGUID, relationshipName string, properties any, secondaryGUID, template string,
) error {
	const operation = "setupRelationship"

	if err := c.validateEnds(operation, userID, primaryGUID, relationshipName, secondaryGUID, template); err != nil {
		return err
	}

	_, err := rest.Invoke[api.VoidResponse](ctx, c.invoker, operation, http.MethodPost, template,
		relationshipBody(relationshipName, properties),
		userID, primaryGUID, secondaryGUID, relationshipName)
	return err
}

// SetupMultiLinkRelationship always creates a new relationship instance and
// returns its GUID, which is the only handle for later updates and removal.
// The template placeholders are those of SetupRelationship.
func (c *Client) SetupMultiLinkRelationship(
	ctx context.Context, userID, primaryGUID, relationshipName string, properties any, secondaryGUID, template string,
) (string, error) {
	const operation = "setupMultiLinkRelationship"

	if err := c.validateEnds(operation, userID, primaryGUID, relationshipName, secondaryGUID, template); err != nil {
		return "", err
	}

	resp, err := rest.Invoke[api.GUIDResponse](ctx, c.invoker, operation, http.MethodPost, template,
		relationshipBody(relationshipName, properties),
		userID, primaryGUID, secondaryGUID, relationshipName)
	if err != nil {
		return "", err
	}
	return resp.GUID, nil
}

// UpdateRelationship updates the relationship instance relationshipGUID. The
// template receives the relationship GUID as {2} and isMergeUpdate as {3}.
func (c *Client) UpdateRelationship(
	ctx context.Context, userID, relationshipGUID string, isMergeUpdate bool, properties any, template string,
) error {
	const operation = "updateRelationship"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return err
	}
	if err := validators.ValidateGUID(operation, relationshipGUID, paramRelationshipGUID); err != nil {
		return err
	}
	if err := validators.ValidateObject(operation, present(properties), paramProperties); err != nil {
		return err
	}

	_, err := rest.Invoke[api.VoidResponse](ctx, c.invoker, operation, http.MethodPost, template,
		relationshipBody("", properties),
		userID, relationshipGUID, isMergeUpdate)
	return err
}

// ClearRelationship removes the relationship instance relationshipGUID. The
// template receives the relationship GUID as {2}. Removing an instance that
// does not exist fails with an error for which apierrors.IsNotFound is true.
func (c *Client) ClearRelationship(ctx context.Context, userID, relationshipGUID, template string) error {
	const operation = "clearRelationship"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return err
	}
	if err := validators.ValidateGUID(operation, relationshipGUID, paramRelationshipGUID); err != nil {
		return err
	}

	_, err := rest.Invoke[api.VoidResponse](ctx, c.invoker, operation, http.MethodPost, template,
		nil, userID, relationshipGUID)
	return err
}

// ClearRelationshipBetween removes the relationship named relationshipName
// from primaryGUID to secondaryGUID. The template placeholders are those of
// SetupRelationship.
func (c *Client) ClearRelationshipBetween(
	ctx context.Context, userID, primaryGUID, relationshipName, secondaryGUID, template string,
) error {
	const operation = "clearRelationshipBetween"

	if err := c.validateEnds(operation, userID, primaryGUID, relationshipName, secondaryGUID, template); err != nil {
		return err
	}

	_, err := rest.Invoke[api.VoidResponse](ctx, c.invoker, operation, http.MethodPost, template,
		relationshipBody(relationshipName, nil),
		userID, primaryGUID, secondaryGUID, relationshipName)
	return err
}

// GetRelatedElements returns one page of the elements related to
// startingGUID. The template receives startingGUID as {2}, startFrom as {3}
// and the page size as {4}. Ordering is decided by the server and is not
// stable across calls. No matches yields an empty slice.
func (c *Client) GetRelatedElements(
	ctx context.Context, userID, startingGUID, template string, startFrom, pageSize int,
) ([]api.RelatedElementStub, error) {
	const operation = "getRelatedElements"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return nil, err
	}
	if err := validators.ValidateGUID(operation, startingGUID, paramStartingGUID); err != nil {
		return nil, err
	}
	size, err := validators.ValidatePaging(operation, startFrom, pageSize, c.defaultPageSize)
	if err != nil {
		return nil, err
	}

	resp, err := rest.Invoke[api.RelatedElementListResponse](ctx, c.invoker, operation, http.MethodGet, template,
		nil, userID, startingGUID, startFrom, size)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.ElementList), nil
}

// AllRelatedElements walks every page of GetRelatedElements, requesting
// pageSize elements at a time until an empty page is returned. The server may
// return fewer elements than asked for, so a short page does not end the
// walk. A pageSize of zero uses the configured default. Iteration stops at
// the first error.
func (c *Client) AllRelatedElements(
	ctx context.Context, userID, startingGUID, template string, pageSize int,
) iter.Seq2[api.RelatedElementStub, error] {
	return func(yield func(api.RelatedElementStub, error) bool) {
		size := pageSize
		if size == 0 {
			size = c.defaultPageSize
		}

		for startFrom := 0; ; {
			page, err := c.GetRelatedElements(ctx, userID, startingGUID, template, startFrom, size)
			if err != nil {
				yield(api.RelatedElementStub{}, err)
				return
			}
			for _, stub := range page {
				if !yield(stub, nil) {
					return
				}
			}
			if len(page) == 0 {
				return
			}
			startFrom += len(page)
		}
	}
}

// GetElementStubsByName returns one page of elements whose name matches
// name. The name is sent as is; the template receives startFrom as {2} and
// the page size as {3}.
func (c *Client) GetElementStubsByName(
	ctx context.Context, userID, name, template string, startFrom, pageSize int,
) ([]api.ElementStub, error) {
	const operation = "getElementStubsByName"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return nil, err
	}
	if err := validators.ValidateName(operation, name, paramName); err != nil {
		return nil, err
	}
	size, err := validators.ValidatePaging(operation, startFrom, pageSize, c.defaultPageSize)
	if err != nil {
		return nil, err
	}

	resp, err := rest.Invoke[api.ElementStubListResponse](ctx, c.invoker, operation, http.MethodPost, template,
		api.NameRequestBody{Class: "NameRequestBody", Name: name, NameParameter: paramName},
		userID, startFrom, size)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.ElementList), nil
}

// GetConnection returns the connection describing an event topic of the
// access service. The template receives callerID as {2}.
func (c *Client) GetConnection(
	ctx context.Context, userID, callerID, template string,
) (*api.Connection, error) {
	const operation = "getOutTopicConnection"

	if err := c.validateCommon(operation, userID, template); err != nil {
		return nil, err
	}
	if err := validators.ValidateName(operation, callerID, paramCallerID); err != nil {
		return nil, err
	}

	resp, err := rest.Invoke[api.ConnectionResponse](ctx, c.invoker, operation, http.MethodGet, template,
		nil, userID, callerID)
	if err != nil {
		return nil, err
	}
	return resp.Connection, nil
}

func (*Client) validateCommon(operation, userID, template string) error {
	if err := validators.ValidateUserID(operation, userID); err != nil {
		return err
	}
	return validators.ValidateName(operation, template, paramTemplate)
}

func (c *Client) validateCreate(operation, userID string, properties api.Properties, template string) error {
	if err := c.validateCommon(operation, userID, template); err != nil {
		return err
	}
	if err := validators.ValidateObject(operation, present(properties), paramProperties); err != nil {
		return err
	}
	return validators.ValidateName(operation, properties.GetQualifiedName(), paramQualifiedName)
}

func (c *Client) validateEnds(operation, userID, primaryGUID, relationshipName, secondaryGUID, template string) error {
	if err := c.validateCommon(operation, userID, template); err != nil {
		return err
	}
	if err := validators.ValidateGUID(operation, primaryGUID, paramPrimaryGUID); err != nil {
		return err
	}
	if err := validators.ValidateName(operation, relationshipName, paramRelationshipName); err != nil {
		return err
	}
	return validators.ValidateGUID(operation, secondaryGUID, paramSecondaryGUID)
}

func relationshipBody(relationshipName string, properties any) api.RelationshipRequestBody {
	body := api.RelationshipRequestBody{
		Class:            "RelationshipRequestBody",
		RelationshipName: strings.TrimSpace(relationshipName),
	}
	if present(properties) {
		body.Properties = properties
	}
	return body
}

// present reports whether v holds a value, treating typed nil pointers and maps as absent
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
