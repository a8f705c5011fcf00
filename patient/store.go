package patient

import (
	"context"
	"net/url"

	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

//go:generate mockgen -destination=./store_mock.go -package=patient -source=store.go

// Store is the subset of the FHIR gateway client the patient service depends on.
type Store interface {
	Create(ctx context.Context, resource any, result any) error
	Read(ctx context.Context, resourceType, id string, target any) error
	Search(ctx context.Context, resourceType string, params url.Values, bundle *fhir.Bundle) error
}
