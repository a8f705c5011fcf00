package patient

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

const DefaultSearchTimeout = 5 * time.Second

// Service aggregates patient data from the upstream FHIR store. It holds no
// state of its own; every view is assembled on demand.
type Service struct {
	store Store
	// searchTimeout bounds each secondary search in GetWithHistory
	// individually, so one hanging upstream query cannot stall the view.
	searchTimeout time.Duration
}

func New(store Store, searchTimeout time.Duration) *Service {
	if searchTimeout <= 0 {
		searchTimeout = DefaultSearchTimeout
	}
	return &Service{store: store, searchTimeout: searchTimeout}
}

// Onboard transforms the onboarding payload and creates the patient upstream.
// The returned record is the store's canonical copy, including the assigned id.
func (s *Service) Onboard(ctx context.Context, req OnboardingRequest) (*fhir.Patient, error) {
	resource := PatientFromOnboarding(req)
	var created fhir.Patient
	if err := s.store.Create(ctx, resource, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*fhir.Patient, error) {
	var patient fhir.Patient
	if err := s.store.Read(ctx, "Patient", id, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// Search returns the patients matching params. An empty result bundle yields
// an empty slice, never an error.
func (s *Service) Search(ctx context.Context, params url.Values) ([]fhir.Patient, error) {
	var bundle fhir.Bundle
	if err := s.store.Search(ctx, "Patient", params, &bundle); err != nil {
		return nil, err
	}
	patients := make([]fhir.Patient, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		var patient fhir.Patient
		if err := json.Unmarshal(entry.Resource, &patient); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Skipping malformed Patient entry in search result")
			continue
		}
		patients = append(patients, patient)
	}
	return patients, nil
}

// AddMedication transforms the medication payload and creates the statement
// upstream. The path-level patientID overrides any patient id in the payload.
func (s *Service) AddMedication(ctx context.Context, patientID string, req MedicationRequest) (*fhir.MedicationStatement, error) {
	resource, err := MedicationStatementFromRequest(req, patientID)
	if err != nil {
		return nil, err
	}
	var created fhir.MedicationStatement
	if err := s.store.Create(ctx, resource, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// secondarySearches lists the clinical resource types queried alongside the
// patient, with the search parameter each type uses to reference the patient.
var secondarySearches = []struct {
	resourceType string
	param        string
}{
	{"MedicationStatement", "subject"},
	{"AllergyIntolerance", "patient"},
	{"Condition", "subject"},
	{"Observation", "subject"},
}

// GetWithHistory fetches the patient and assembles their clinical history from
// four independent searches, issued concurrently. Only a missing patient is
// fatal; a failing secondary search is logged as a warning and recorded in the
// view's Sources, contributing no entries.
func (s *Service) GetWithHistory(ctx context.Context, patientID string) (*HistoryView, error) {
	patient, err := s.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	results := make([]searchResult, len(secondarySearches))
	var wg sync.WaitGroup
	for i, search := range secondarySearches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.searchRelated(ctx, search.resourceType, search.param, patientID)
		}()
	}
	wg.Wait()

	view := &HistoryView{Patient: *patient}
	for i, result := range results {
		resourceType := secondarySearches[i].resourceType
		status := SourceStatus{Resource: resourceType, Count: len(result.entries)}
		if result.err != nil {
			status.Error = result.err.Error()
			log.Ctx(ctx).Warn().Err(result.err).
				Str("resource_type", resourceType).
				Str("patient_id", patientID).
				Msg("Secondary search failed, history view will be partial")
			view.Sources = append(view.Sources, status)
			continue
		}
		for _, raw := range result.entries {
			if resourceType == "MedicationStatement" {
				var statement fhir.MedicationStatement
				if err := json.Unmarshal(raw, &statement); err != nil {
					log.Ctx(ctx).Warn().Err(err).Msg("Skipping malformed MedicationStatement entry")
					status.Count--
					continue
				}
				view.Medications = append(view.Medications, statement)
				continue
			}
			view.Others = append(view.Others, TaggedResource{Kind: resourceType, Resource: raw})
		}
		view.Sources = append(view.Sources, status)
	}
	sort.SliceStable(view.Medications, func(i, j int) bool {
		return medicationStart(view.Medications[i]) < medicationStart(view.Medications[j])
	})
	return view, nil
}

type searchResult struct {
	entries []json.RawMessage
	err     error
}

func (s *Service) searchRelated(ctx context.Context, resourceType, param, patientID string) searchResult {
	ctx, cancel := context.WithTimeout(ctx, s.searchTimeout)
	defer cancel()
	var bundle fhir.Bundle
	params := url.Values{param: []string{"Patient/" + patientID}}
	if err := s.store.Search(ctx, resourceType, params, &bundle); err != nil {
		return searchResult{err: err}
	}
	entries := make([]json.RawMessage, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		entries = append(entries, entry.Resource)
	}
	return searchResult{entries: entries}
}

func medicationStart(statement fhir.MedicationStatement) string {
	if statement.EffectivePeriod != nil && statement.EffectivePeriod.Start != nil {
		return *statement.EffectivePeriod.Start
	}
	return ""
}
