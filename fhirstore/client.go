// Package fhirstore wraps the upstream FHIR store behind validate-first write
// semantics and a stable set of error kinds.
package fhirstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	fhirclient "github.com/SanteonNL/go-fhir-client"
	"github.com/curasys/fhir-gateway/lib/audit"
	"github.com/rs/zerolog/log"
	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

// Config returns the fhirclient configuration used for the upstream store.
func Config() *fhirclient.Config {
	config := fhirclient.DefaultConfig()
	config.Non2xxStatusHandler = func(response *http.Response, responseBody []byte) {
		log.Debug().Msgf("Non-2xx status code from FHIR store (%s %s, status=%d), content: %s",
			response.Request.Method, response.Request.URL, response.StatusCode, string(responseBody))
	}
	return &config
}

// Client is the gateway's client for the upstream FHIR store. Writes are
// validated before any network call; transport failures are translated into
// the error kinds in errors.go.
type Client struct {
	fhir      fhirclient.Client
	validator Validator
}

// New creates a Client for the FHIR store at baseURL.
func New(baseURL *url.URL, httpClient fhirclient.HttpRequestDoer) *Client {
	return NewWithClient(fhirclient.New(baseURL, httpClient, Config()), StructuralValidator{})
}

// NewWithClient creates a Client on top of an existing fhirclient.Client.
func NewWithClient(client fhirclient.Client, validator Validator) *Client {
	return &Client{fhir: client, validator: validator}
}

func (c *Client) Validate(resource any) (*ValidationResult, error) {
	return c.validator.Validate(resource)
}

// Create validates the resource and creates it in the upstream store,
// unmarshalling the store's canonical copy into result.
func (c *Client) Create(ctx context.Context, resource any, result any) error {
	resourceType, err := c.checkBeforeWrite(resource)
	if err != nil {
		return err
	}
	var statusCode int
	err = c.fhir.CreateWithContext(ctx, resource, result, fhirclient.ResponseStatusCode(&statusCode))
	if err != nil {
		return translateError(err, statusCode)
	}
	audit.Record(ctx, fhir.AuditEventActionC, resourceType, resourceID(result))
	return nil
}

// Update validates the resource and updates resourceType/id in the upstream store.
func (c *Client) Update(ctx context.Context, resourceType, id string, resource any, result any) error {
	if _, err := c.checkBeforeWrite(resource); err != nil {
		return err
	}
	var statusCode int
	err := c.fhir.UpdateWithContext(ctx, resourceType+"/"+id, resource, result, fhirclient.ResponseStatusCode(&statusCode))
	if err != nil {
		return translateError(err, statusCode)
	}
	audit.Record(ctx, fhir.AuditEventActionU, resourceType, id)
	return nil
}

// Read fetches resourceType/id from the upstream store. A 404 from the store
// is reported as *NotFoundError, distinct from other upstream failures.
func (c *Client) Read(ctx context.Context, resourceType, id string, target any) error {
	var statusCode int
	err := c.fhir.ReadWithContext(ctx, resourceType+"/"+id, target, fhirclient.ResponseStatusCode(&statusCode))
	if err != nil {
		if statusCode == http.StatusNotFound || upstreamStatus(err) == http.StatusNotFound {
			return &NotFoundError{ResourceType: resourceType, ID: id}
		}
		return translateError(err, statusCode)
	}
	return nil
}

// Delete removes resourceType/id from the upstream store.
func (c *Client) Delete(ctx context.Context, resourceType, id string) error {
	var statusCode int
	err := c.fhir.DeleteWithContext(ctx, resourceType+"/"+id, fhirclient.ResponseStatusCode(&statusCode))
	if err != nil {
		return translateError(err, statusCode)
	}
	audit.Record(ctx, fhir.AuditEventActionD, resourceType, id)
	return nil
}

// Search queries the upstream store for resources of resourceType.
func (c *Client) Search(ctx context.Context, resourceType string, params url.Values, bundle *fhir.Bundle) error {
	var statusCode int
	err := c.fhir.SearchWithContext(ctx, resourceType, params, bundle, fhirclient.ResponseStatusCode(&statusCode))
	if err != nil {
		return translateError(err, statusCode)
	}
	return nil
}

// checkBeforeWrite runs pre-flight validation. The upstream store is never
// contacted for a resource that fails validation.
func (c *Client) checkBeforeWrite(resource any) (string, error) {
	desc, err := fhirclient.DescribeResource(resource)
	if err != nil {
		return "", err
	}
	result, err := c.validator.Validate(resource)
	if err != nil {
		return "", err
	}
	if !result.Valid {
		return "", &ValidationError{ResourceType: desc.Type, Messages: result.Messages}
	}
	return desc.Type, nil
}

// translateError maps a fhirclient error onto the gateway's error kinds.
// statusCode is the captured HTTP status, zero when no response was received.
func translateError(err error, statusCode int) error {
	if err == nil {
		return nil
	}
	var outcomeErr fhirclient.OperationOutcomeError
	if errors.As(err, &outcomeErr) {
		body, _ := json.Marshal(outcomeErr.OperationOutcome)
		return &UpstreamError{StatusCode: outcomeErr.HttpStatusCode, Body: body}
	}
	if statusCode == 0 {
		return &UnreachableError{Err: err}
	}
	if statusCode >= 200 && statusCode < 300 {
		// Response was accepted upstream but could not be processed locally.
		return err
	}
	return &UpstreamError{StatusCode: statusCode}
}

func upstreamStatus(err error) int {
	var outcomeErr fhirclient.OperationOutcomeError
	if errors.As(err, &outcomeErr) {
		return outcomeErr.HttpStatusCode
	}
	return 0
}

func resourceID(resource any) string {
	data, err := json.Marshal(resource)
	if err != nil {
		return ""
	}
	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	return envelope.ID
}
