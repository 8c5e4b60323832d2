// Package sla computes response and resolution deadlines for tickets from an
// immutable settings snapshot. Every function is a pure function of its
// arguments: no ambient clock, no cached state, safe for concurrent callers.
package sla

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// Calculate resolves the policy for the given priority and returns the two
// deadlines counted from submittedAt. A disabled policy returns (nil, nil):
// the ticket simply has no SLA, which is not an error. An unknown priority
// returns an InvalidPriorityError; calendar problems surface as
// ConfigurationError rather than a best-guess deadline.
//
// Response and resolution are computed independently from submittedAt, not
// chained; no ordering between the two is guaranteed.
func Calculate(priority domain.TicketPriority, submittedAt time.Time, settings domain.SLASettings) (*domain.SLAExpectation, error) {
	policy, ok := settings.Policies[priority]
	if !ok {
		return nil, &InvalidPriorityError{Priority: priority}
	}
	if !policy.Enabled {
		return nil, nil
	}

	if !policy.BusinessHoursOnly {
		response, err := Advance24x7(submittedAt, policy.ResponseTimeHours)
		if err != nil {
			return nil, err
		}
		resolution, err := Advance24x7(submittedAt, policy.ResolutionTimeHours)
		if err != nil {
			return nil, err
		}
		return &domain.SLAExpectation{ResponseExpectedBy: response, ResolutionExpectedBy: resolution}, nil
	}

	cal, err := NewBusinessCalendar(settings.BusinessHours)
	if err != nil {
		return nil, err
	}
	response, err := cal.AdvanceBusinessHours(submittedAt, policy.ResponseTimeHours)
	if err != nil {
		return nil, err
	}
	resolution, err := cal.AdvanceBusinessHours(submittedAt, policy.ResolutionTimeHours)
	if err != nil {
		return nil, err
	}
	return &domain.SLAExpectation{ResponseExpectedBy: response, ResolutionExpectedBy: resolution}, nil
}
