package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/sla"
)

// AlertGate deduplicates alerts across sweeps; the first claim of a key wins.
type AlertGate interface {
	AcquireOnce(ctx context.Context, key string, ttl time.Duration) bool
}

// SweeperDeps bundles collaborators for the breach sweeper.
type SweeperDeps struct {
	Tickets    repository.TicketRepository
	SLA        *service.SLAService
	Gate       AlertGate
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger

	// Now is the sweep clock; tests inject a fixed instant. Defaults to time.Now.
	Now func() time.Time
}

// BreachSweeper periodically compares every open ticket's SLA deadlines
// against the clock and raises breach and at-risk events. The deadline
// calculation itself never reads the clock; only this comparison does.
type BreachSweeper struct {
	cfg  config.SweeperConfig
	deps SweeperDeps
	stop chan struct{}
	done chan struct{}
}

// NewBreachSweeper constructs the sweeper.
func NewBreachSweeper(cfg config.SweeperConfig, deps SweeperDeps) *BreachSweeper {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &BreachSweeper{
		cfg:  cfg,
		deps: deps,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the cron-scheduled sweep loop. The schedule is a standard
// 5-field cron expression, e.g. "*/5 * * * *".
func (s *BreachSweeper) Start() error {
	if !s.cfg.Enabled {
		s.deps.Logger.Info("breach sweeper disabled")
		close(s.done)
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(s.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("invalid sweeper schedule %q: %w", s.cfg.Schedule, err)
	}
	s.deps.Logger.Info("breach sweeper scheduled", zap.String("cron", s.cfg.Schedule))

	go func() {
		defer close(s.done)
		for {
			now := s.deps.Now()
			timer := time.NewTimer(sched.Next(now).Sub(now))
			select {
			case <-s.stop:
				timer.Stop()
				return
			case <-timer.C:
			}
			if err := s.SweepOnce(context.Background()); err != nil {
				s.deps.Logger.Error("sweep failed", zap.Error(err))
			}
		}
	}()
	return nil
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *BreachSweeper) Stop() {
	close(s.stop)
	<-s.done
}

// SweepOnce runs a single sweep over all open tickets.
func (s *BreachSweeper) SweepOnce(ctx context.Context) error {
	now := s.deps.Now()
	batch := s.cfg.TicketBatchSize
	if batch <= 0 {
		batch = 500
	}
	tickets, err := s.deps.Tickets.ListOpen(ctx, batch)
	if err != nil {
		return fmt.Errorf("listing open tickets: %w", err)
	}

	for i := range tickets {
		if err := s.checkTicket(ctx, &tickets[i], now); err != nil {
			// A broken calendar breaks every ticket; stop instead of
			// logging the same failure once per ticket.
			var cfgErr *sla.ConfigurationError
			if errors.As(err, &cfgErr) {
				return err
			}
			s.deps.Logger.Warn("skipping ticket in sweep",
				zap.String("ticket_id", tickets[i].ID), zap.Error(err))
		}
	}

	s.deps.Metrics.RecordSweep()
	s.deps.Logger.Debug("sweep complete", zap.Int("tickets", len(tickets)))
	return nil
}

func (s *BreachSweeper) checkTicket(ctx context.Context, ticket *domain.Ticket, now time.Time) error {
	expectation, err := s.deps.SLA.ExpectationFor(ctx, ticket.Priority, ticket.CreatedAt)
	if err != nil {
		return err
	}
	if expectation == nil {
		return nil
	}

	if ticket.FirstResponseAt == nil {
		s.checkDeadline(ctx, ticket, now, expectation.ResponseExpectedBy,
			"response", events.EventSLAResponseBreached, events.EventSLAResponseAtRisk)
	}
	if ticket.ResolvedAt == nil {
		s.checkDeadline(ctx, ticket, now, expectation.ResolutionExpectedBy,
			"resolution", events.EventSLAResolutionBreached, events.EventSLAResolutionAtRisk)
	}
	return nil
}

func (s *BreachSweeper) checkDeadline(ctx context.Context, ticket *domain.Ticket, now, expectedBy time.Time, metric string, breached, atRisk events.EventType) {
	switch {
	case now.After(expectedBy):
		if !s.deps.Gate.AcquireOnce(ctx, metric+":breach:"+ticket.ID, s.cfg.AlertDedupeTTL()) {
			return
		}
		s.deps.Metrics.RecordBreach(metric)
		s.publish(ctx, breached, ticket, expectedBy, now)
	case s.cfg.AtRiskLead() > 0 && now.After(expectedBy.Add(-s.cfg.AtRiskLead())):
		if !s.deps.Gate.AcquireOnce(ctx, metric+":at-risk:"+ticket.ID, s.cfg.AlertDedupeTTL()) {
			return
		}
		s.publish(ctx, atRisk, ticket, expectedBy, now)
	}
}

func (s *BreachSweeper) publish(ctx context.Context, eventType events.EventType, ticket *domain.Ticket, expectedBy, now time.Time) {
	if s.deps.Dispatcher == nil {
		return
	}
	err := s.deps.Dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		Timestamp: now,
		Payload: events.SLADeadlinePayload{
			TicketKey:   ticket.ExternalKey,
			Priority:    ticket.Priority,
			ExpectedBy:  expectedBy,
			DetectedAt:  now,
			SubmittedAt: ticket.CreatedAt,
		},
	})
	if err != nil {
		s.deps.Logger.Warn("event handlers failed",
			zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
	}
}
