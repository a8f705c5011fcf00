// Package audit emits an audit trail entry for every state-changing operation
// forwarded to the upstream FHIR store.
package audit

import (
	"context"
	"time"

	"github.com/curasys/fhir-gateway/lib/to"
	"github.com/rs/zerolog/log"
	"github.com/zorgbijjou/golang-fhir-models/fhir-models/fhir"
)

var nowFunc = time.Now

type Config struct {
	// ObserverSystem and ObserverValue identify this gateway as the reporting
	// device in emitted AuditEvents.
	ObserverSystem string
	ObserverValue  string
}

var config = Config{
	ObserverSystem: "https://curasys.com/fhir-gateway",
	ObserverValue:  "fhir-gateway",
}

func Configure(cfg Config) {
	config = cfg
}

// Event builds an AuditEvent for the given action on resourceType/resourceID.
func Event(action fhir.AuditEventAction, resourceType, resourceID string) *fhir.AuditEvent {
	return &fhir.AuditEvent{
		Action:   to.Ptr(action),
		Recorded: nowFunc().Format(time.RFC3339),
		Entity: []fhir.AuditEventEntity{
			{
				What: &fhir.Reference{
					Type:      to.Ptr(resourceType),
					Reference: to.Ptr(resourceType + "/" + resourceID),
				},
			},
		},
		Source: fhir.AuditEventSource{
			Observer: fhir.Reference{
				Type: to.Ptr("Device"),
				Identifier: &fhir.Identifier{
					System: to.Ptr(config.ObserverSystem),
					Value:  to.Ptr(config.ObserverValue),
				},
			},
		},
	}
}

// Record logs an audit entry for a completed side effect on the given resource.
func Record(ctx context.Context, action fhir.AuditEventAction, resourceType, resourceID string) {
	event := Event(action, resourceType, resourceID)
	log.Ctx(ctx).Info().
		Str("audit_action", action.Code()).
		Str("resource_type", resourceType).
		Str("resource_id", resourceID).
		Str("recorded", event.Recorded).
		Msg("Audit event")
}
