package fhirstore

import (
	"encoding/json"
	"fmt"

	"github.com/curasys/fhir-gateway/lib/to"
	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

// ValidationResult reports the outcome of validating a single resource.
type ValidationResult struct {
	Valid    bool
	Messages []fhir.OperationOutcomeIssue
}

// Validator checks a FHIR resource before it is sent to the upstream store.
type Validator interface {
	Validate(resource any) (*ValidationResult, error)
}

// StructuralValidator performs structural validation: the resource must be a
// JSON object carrying a supported resourceType, and must contain the elements
// the base resource definition marks as required. Profile and terminology
// validation remain the upstream store's concern.
type StructuralValidator struct{}

var _ Validator = StructuralValidator{}

// requiredElements lists the top-level elements with cardinality 1..* in the
// base definition of each resource type this gateway forwards.
var requiredElements = map[string][]string{
	"Patient":             {},
	"MedicationStatement": {"status", "subject", "medicationCodeableConcept"},
	"AllergyIntolerance":  {"patient"},
	"Condition":           {"subject"},
	"Observation":         {"status", "code"},
	"AuditEvent":          {"type", "recorded", "source"},
}

func (v StructuralValidator) Validate(resource any) (*ValidationResult, error) {
	data, err := json.Marshal(resource)
	if err != nil {
		return nil, fmt.Errorf("resource is not serializable: %w", err)
	}
	var elements map[string]json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("resource is not a JSON object: %w", err)
	}

	var issues []fhir.OperationOutcomeIssue
	resourceType := jsonString(elements["resourceType"])
	required, supported := requiredElements[resourceType]
	switch {
	case resourceType == "":
		issues = append(issues, issue(fhir.IssueTypeStructure, "resource carries no resourceType", "resourceType"))
	case !supported:
		issues = append(issues, issue(fhir.IssueTypeNotSupported, fmt.Sprintf("resource type %s is not supported by this gateway", resourceType), "resourceType"))
	default:
		for _, element := range required {
			if isAbsent(elements[element]) {
				issues = append(issues, issue(fhir.IssueTypeRequired, fmt.Sprintf("%s.%s is required", resourceType, element), resourceType+"."+element))
			}
		}
		if resourceType == "Patient" {
			issues = append(issues, validatePatientName(elements["name"])...)
		}
	}

	return &ValidationResult{Valid: len(issues) == 0, Messages: issues}, nil
}

// validatePatientName enforces the gateway's onboarding profile: a Patient must
// carry at least one name with a family name and at least one given name.
func validatePatientName(raw json.RawMessage) []fhir.OperationOutcomeIssue {
	var names []fhir.HumanName
	if isAbsent(raw) || json.Unmarshal(raw, &names) != nil || len(names) == 0 {
		return []fhir.OperationOutcomeIssue{issue(fhir.IssueTypeRequired, "Patient.name is required", "Patient.name")}
	}
	var issues []fhir.OperationOutcomeIssue
	if to.EmptyString(names[0].Family) == "" {
		issues = append(issues, issue(fhir.IssueTypeRequired, "Patient.name.family is required", "Patient.name[0].family"))
	}
	if len(names[0].Given) == 0 {
		issues = append(issues, issue(fhir.IssueTypeRequired, "Patient.name.given is required", "Patient.name[0].given"))
	}
	return issues
}

func issue(code fhir.IssueType, diagnostics, expression string) fhir.OperationOutcomeIssue {
	return fhir.OperationOutcomeIssue{
		Severity:    fhir.IssueSeverityError,
		Code:        code,
		Diagnostics: to.Ptr(diagnostics),
		Expression:  []string{expression},
	}
}

func jsonString(raw json.RawMessage) string {
	var s string
	if raw == nil || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func isAbsent(raw json.RawMessage) bool {
	return raw == nil || string(raw) == "null"
}
