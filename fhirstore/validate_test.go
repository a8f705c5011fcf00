package fhirstore

import (
	"testing"

	"github.com/curasys/fhir-gateway/lib/to"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

func TestStructuralValidator(t *testing.T) {
	validator := StructuralValidator{}

	t.Run("valid patient", func(t *testing.T) {
		result, err := validator.Validate(fhir.Patient{
			Name: []fhir.HumanName{{
				Family: to.Ptr("de Vries"),
				Given:  []string{"Jan"},
			}},
		})

		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Messages)
	})
	t.Run("patient without name", func(t *testing.T) {
		result, err := validator.Validate(fhir.Patient{})

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, fhir.IssueTypeRequired, result.Messages[0].Code)
		assert.Equal(t, []string{"Patient.name"}, result.Messages[0].Expression)
	})
	t.Run("patient name missing family and given", func(t *testing.T) {
		result, err := validator.Validate(fhir.Patient{
			Name: []fhir.HumanName{{Text: to.Ptr("Jan de Vries")}},
		})

		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Len(t, result.Messages, 2)
	})
	t.Run("medication statement missing required elements", func(t *testing.T) {
		result, err := validator.Validate(map[string]any{
			"resourceType": "MedicationStatement",
			"status":       "active",
		})

		require.NoError(t, err)
		assert.False(t, result.Valid)
		expressions := make([]string, 0, len(result.Messages))
		for _, message := range result.Messages {
			expressions = append(expressions, message.Expression[0])
		}
		assert.ElementsMatch(t, []string{
			"MedicationStatement.subject",
			"MedicationStatement.medicationCodeableConcept",
		}, expressions)
	})
	t.Run("unsupported resource type", func(t *testing.T) {
		result, err := validator.Validate(map[string]any{
			"resourceType": "Encounter",
		})

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, fhir.IssueTypeNotSupported, result.Messages[0].Code)
	})
	t.Run("missing resource type", func(t *testing.T) {
		result, err := validator.Validate(map[string]any{"status": "active"})

		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, fhir.IssueTypeStructure, result.Messages[0].Code)
	})
	t.Run("severity is always error", func(t *testing.T) {
		result, err := validator.Validate(map[string]any{"resourceType": "Encounter"})

		require.NoError(t, err)
		for _, message := range result.Messages {
			assert.Equal(t, fhir.IssueSeverityError, message.Severity)
		}
	})
}
