package patient

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/curasys/fhir-gateway/lib/to"
	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

// ErrMissingPatientReference is returned when a medication payload carries no
// patient identity and none was supplied through the request path.
var ErrMissingPatientReference = errors.New("medication statement requires a patient reference")

// ErrInvalidStatus is returned when the medication status is not a valid
// MedicationStatement status code.
var ErrInvalidStatus = errors.New("invalid medication status")

// PatientFromOnboarding maps the flat onboarding payload onto a FHIR Patient.
// Optional fields that are absent in the input produce no FHIR elements at all,
// so the resulting resource never carries empty telecom or address entries.
func PatientFromOnboarding(req OnboardingRequest) fhir.Patient {
	name := fhir.HumanName{
		Family: to.Ptr(req.LastName),
		Given:  []string{req.FirstName},
	}
	if req.MiddleName != "" {
		name.Given = append(name.Given, req.MiddleName)
	}
	patient := fhir.Patient{
		Name: []fhir.HumanName{name},
	}
	if req.DateOfBirth != "" {
		patient.BirthDate = to.Ptr(req.DateOfBirth)
	}
	switch strings.ToLower(req.Gender) {
	case "male":
		patient.Gender = to.Ptr(fhir.AdministrativeGenderMale)
	case "female":
		patient.Gender = to.Ptr(fhir.AdministrativeGenderFemale)
	case "other":
		patient.Gender = to.Ptr(fhir.AdministrativeGenderOther)
	case "":
		// leave unset
	default:
		patient.Gender = to.Ptr(fhir.AdministrativeGenderUnknown)
	}
	if req.Email != "" {
		patient.Telecom = append(patient.Telecom, fhir.ContactPoint{
			System: to.Ptr(fhir.ContactPointSystemEmail),
			Value:  to.Ptr(req.Email),
		})
	}
	if req.Phone != "" {
		patient.Telecom = append(patient.Telecom, fhir.ContactPoint{
			System: to.Ptr(fhir.ContactPointSystemPhone),
			Value:  to.Ptr(req.Phone),
		})
	}
	if addr := req.Address; addr != nil {
		fhirAddr := fhir.Address{
			City:       to.NilString(addr.City),
			State:      to.NilString(addr.State),
			PostalCode: to.NilString(addr.PostalCode),
			Country:    to.NilString(addr.Country),
		}
		if addr.Street != "" {
			fhirAddr.Line = []string{addr.Street}
		}
		patient.Address = []fhir.Address{fhirAddr}
	}
	for _, id := range req.Identifiers {
		if id.Value == "" {
			continue
		}
		identifier := fhir.Identifier{
			System: to.NilString(id.System),
			Value:  to.Ptr(id.Value),
		}
		if id.Type != "" {
			identifier.Type = &fhir.CodeableConcept{Text: to.Ptr(id.Type)}
		}
		patient.Identifier = append(patient.Identifier, identifier)
	}
	return patient
}

// MedicationStatementFromRequest maps the flat medication payload onto a FHIR
// MedicationStatement. pathPatientID, when non-empty, overrides any patient
// identity embedded in the payload.
func MedicationStatementFromRequest(req MedicationRequest, pathPatientID string) (fhir.MedicationStatement, error) {
	patientID := req.PatientID
	if pathPatientID != "" {
		patientID = pathPatientID
	}
	if patientID == "" {
		return fhir.MedicationStatement{}, ErrMissingPatientReference
	}
	statement := fhir.MedicationStatement{
		Subject: fhir.Reference{
			Reference: to.Ptr("Patient/" + patientID),
		},
		MedicationCodeableConcept: &fhir.CodeableConcept{
			Text: to.Ptr(req.MedicationName),
		},
	}
	if err := statement.Status.UnmarshalJSON([]byte(req.Status)); err != nil {
		return fhir.MedicationStatement{}, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	if req.MedicationCode != "" || req.MedicationSystem != "" {
		statement.MedicationCodeableConcept.Coding = []fhir.Coding{{
			System:  to.NilString(req.MedicationSystem),
			Code:    to.NilString(req.MedicationCode),
			Display: to.Ptr(req.MedicationName),
		}}
	}
	if dosage := req.Dosage; dosage != nil {
		statement.Dosage = []fhir.Dosage{dosageFromInput(*dosage)}
	}
	if req.Reason != "" {
		statement.ReasonCode = []fhir.CodeableConcept{{Text: to.Ptr(req.Reason)}}
	}
	if req.StartDate != "" {
		period := fhir.Period{Start: to.Ptr(req.StartDate)}
		if req.EndDate != "" {
			period.End = to.Ptr(req.EndDate)
		}
		statement.EffectivePeriod = &period
	}
	return statement, nil
}

func dosageFromInput(input DosageInput) fhir.Dosage {
	period, unit := parseFrequency(input.Frequency)
	dosage := fhir.Dosage{
		Timing: &fhir.Timing{
			Repeat: &fhir.TimingRepeat{
				Frequency:  to.Ptr(1),
				Period:     to.Ptr(json.Number(period)),
				PeriodUnit: to.Ptr(unit),
			},
		},
	}
	if input.Frequency != "" {
		dosage.Text = to.Ptr(input.Frequency)
	}
	if input.QuantityValue != "" || input.QuantityUnit != "" {
		quantity := fhir.Quantity{Unit: to.NilString(input.QuantityUnit)}
		if input.QuantityValue != "" {
			quantity.Value = to.Ptr(json.Number(input.QuantityValue))
		}
		dosage.DoseAndRate = []fhir.DosageDoseAndRate{{DoseQuantity: &quantity}}
	}
	if input.AsNeededReason != "" {
		dosage.AsNeededCodeableConcept = &fhir.CodeableConcept{
			Text: to.Ptr(input.AsNeededReason),
		}
	}
	return dosage
}

var (
	everyPattern  = regexp.MustCompile(`(?i)every\s+(\d+)\s*(hour|day|week)s?`)
	numberPattern = regexp.MustCompile(`\d+`)
)

// parseFrequency interprets free-text dosing instructions ("every 6 hours")
// as a structured interval. Text without the "every N <unit>" shape falls back
// to treating its first integer as an hourly period; text with no digits at
// all falls back to every 6 hours.
func parseFrequency(text string) (period string, unit fhir.UnitsOfTime) {
	if match := everyPattern.FindStringSubmatch(text); match != nil {
		switch strings.ToLower(match[2]) {
		case "day":
			unit = fhir.UnitsOfTimeD
		case "week":
			unit = fhir.UnitsOfTimeWk
		default:
			unit = fhir.UnitsOfTimeH
		}
		return match[1], unit
	}
	if match := numberPattern.FindString(text); match != "" {
		return match, fhir.UnitsOfTimeH
	}
	return "6", fhir.UnitsOfTimeH
}
