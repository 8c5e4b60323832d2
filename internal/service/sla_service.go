package service

import (
	"context"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
)

// SLAService resolves the settings snapshot and runs the deadline calculator.
// The calculator itself stays pure; this layer owns configuration lookup.
type SLAService struct {
	settings *SettingsService
	tickets  repository.TicketRepository
}

// NewSLAService constructs the service.
func NewSLAService(settings *SettingsService, tickets repository.TicketRepository) *SLAService {
	return &SLAService{settings: settings, tickets: tickets}
}

// ExpectationFor computes the deadlines for an arbitrary priority and
// submission instant. A nil expectation means the priority has no SLA.
func (s *SLAService) ExpectationFor(ctx context.Context, priority domain.TicketPriority, submittedAt time.Time) (*domain.SLAExpectation, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return sla.Calculate(priority, submittedAt, *settings)
}

// ExpectationForTicket computes the deadlines for a stored ticket, counted
// from its submission time.
func (s *SLAService) ExpectationForTicket(ctx context.Context, ticketID string) (*domain.Ticket, *domain.SLAExpectation, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	expectation, err := s.ExpectationFor(ctx, ticket.Priority, ticket.CreatedAt)
	if err != nil {
		return nil, nil, err
	}
	return ticket, expectation, nil
}
