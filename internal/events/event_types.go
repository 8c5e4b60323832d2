package events

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSLAResponseAtRisk     EventType = "sla_response_at_risk"
	EventSLAResponseBreached   EventType = "sla_response_breached"
	EventSLAResolutionAtRisk   EventType = "sla_resolution_at_risk"
	EventSLAResolutionBreached EventType = "sla_resolution_breached"
	EventSLASettingsUpdated    EventType = "sla_settings_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SLADeadlinePayload carries the deadline behind a breach or at-risk event.
type SLADeadlinePayload struct {
	TicketKey   string                `json:"ticket_key"`
	Priority    domain.TicketPriority `json:"priority"`
	ExpectedBy  time.Time             `json:"expected_by"`
	DetectedAt  time.Time             `json:"detected_at"`
	SubmittedAt time.Time             `json:"submitted_at"`
}

// SLASettingsUpdatedPayload describes what part of the settings changed.
type SLASettingsUpdatedPayload struct {
	Section string `json:"section"`
}
