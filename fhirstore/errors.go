package fhirstore

import (
	"fmt"

	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

// ValidationError is returned when a resource fails pre-flight validation.
// The upstream store has not been contacted when this error is returned.
type ValidationError struct {
	ResourceType string
	Messages     []fhir.OperationOutcomeIssue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s failed validation (%d issues)", e.ResourceType, len(e.Messages))
}

// NotFoundError is returned when the upstream store reports 404 for a read.
type NotFoundError struct {
	ResourceType string
	ID           string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s not found", e.ResourceType, e.ID)
}

// UpstreamError is returned when the upstream store rejects a request with a
// non-2xx status other than a read's 404. Body carries the upstream response
// body when one was received.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("upstream FHIR store rejected request (status=%d)", e.StatusCode)
	}
	return fmt.Sprintf("upstream FHIR store rejected request (status=%d): %s", e.StatusCode, string(e.Body))
}

// UnreachableError is returned when no response was received from the upstream
// store at all (connection failure, timeout).
type UnreachableError struct {
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("upstream FHIR store unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error {
	return e.Err
}
