package sla

import (
	"fmt"

	"github.com/spec-kit/sla-service/internal/domain"
)

// ConfigurationError signals a business calendar that cannot produce a valid
// working window, e.g. an empty working-weekday set or holidays blanketing
// the whole search horizon. It is always surfaced, never defaulted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sla configuration invalid: %s", e.Reason)
}

// InvalidPriorityError signals a priority with no configured policy.
type InvalidPriorityError struct {
	Priority domain.TicketPriority
}

func (e *InvalidPriorityError) Error() string {
	return fmt.Sprintf("no sla policy configured for priority %q", e.Priority)
}
