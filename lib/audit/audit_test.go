package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

func TestEvent(t *testing.T) {
	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return fixedTime }
	defer func() { nowFunc = time.Now }()

	event := Event(fhir.AuditEventActionC, "Patient", "123")

	assert.Equal(t, fhir.AuditEventActionC, *event.Action)
	assert.Equal(t, "2026-01-01T12:00:00Z", event.Recorded)
	require.Len(t, event.Entity, 1)
	assert.Equal(t, "Patient/123", *event.Entity[0].What.Reference)
	assert.Equal(t, "Patient", *event.Entity[0].What.Type)
	require.NotNil(t, event.Source.Observer.Identifier)
	assert.Equal(t, "fhir-gateway", *event.Source.Observer.Identifier.Value)
}
