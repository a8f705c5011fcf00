package patient

import (
	"encoding/json"

	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

// OnboardingRequest is the flat payload from which a FHIR Patient is built.
// Only FirstName and LastName are required; everything else is optional.
type OnboardingRequest struct {
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	MiddleName  string            `json:"middleName,omitempty"`
	DateOfBirth string            `json:"dateOfBirth,omitempty"`
	Gender      string            `json:"gender,omitempty"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Address     *AddressInput     `json:"address,omitempty"`
	Identifiers []IdentifierInput `json:"identifiers,omitempty"`
}

type AddressInput struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type IdentifierInput struct {
	Value  string `json:"value,omitempty"`
	System string `json:"system,omitempty"`
	// Type is a human-readable label ("Medical Record Number"), not a coded value.
	Type string `json:"type,omitempty"`
}

// MedicationRequest is the flat payload from which a MedicationStatement is built.
type MedicationRequest struct {
	// PatientID may be empty in the payload; the caller can supply it from the
	// request path instead. The path value wins when both are present.
	PatientID        string       `json:"patientId,omitempty"`
	MedicationName   string       `json:"medicationName"`
	MedicationSystem string       `json:"medicationSystem,omitempty"`
	MedicationCode   string       `json:"medicationCode,omitempty"`
	Status           string       `json:"status"`
	Dosage           *DosageInput `json:"dosage,omitempty"`
	Reason           string       `json:"reason,omitempty"`
	StartDate        string       `json:"startDate,omitempty"`
	EndDate          string       `json:"endDate,omitempty"`
}

type DosageInput struct {
	QuantityValue  string `json:"quantityValue,omitempty"`
	QuantityUnit   string `json:"quantityUnit,omitempty"`
	Frequency      string `json:"frequency,omitempty"`
	AsNeededReason string `json:"asNeededReason,omitempty"`
}

// HistoryView is the federated record of one patient, assembled on demand from
// independent upstream queries. Sources records the outcome of every secondary
// search, so a partially assembled view is recognizable as such.
type HistoryView struct {
	Patient     fhir.Patient               `json:"patient"`
	Medications []fhir.MedicationStatement `json:"medications"`
	Others      []TaggedResource           `json:"others"`
	Sources     []SourceStatus             `json:"sources"`
}

// TaggedResource is a clinical resource of heterogeneous shape, tagged with its
// FHIR resource type.
type TaggedResource struct {
	Kind     string          `json:"kind"`
	Resource json.RawMessage `json:"resource"`
}

// SourceStatus reports how one secondary search contributed to a HistoryView.
type SourceStatus struct {
	Resource string `json:"resource"`
	Count    int    `json:"count"`
	Error    string `json:"error,omitempty"`
}
