package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/service"
)

type fakeTickets struct {
	tickets []domain.Ticket
}

func (f *fakeTickets) Create(ctx context.Context, ticket *domain.Ticket) error { return nil }

func (f *fakeTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			return &f.tickets[i], nil
		}
	}
	return nil, context.Canceled
}

func (f *fakeTickets) ListOpen(ctx context.Context, limit int) ([]domain.Ticket, error) {
	return f.tickets, nil
}

type fakeSettingsRepo struct {
	settings domain.SLASettings
}

func (f *fakeSettingsRepo) LoadSettings(ctx context.Context) (*domain.SLASettings, error) {
	settings := f.settings
	return &settings, nil
}

func (f *fakeSettingsRepo) UpsertPolicy(ctx context.Context, priority domain.TicketPriority, policy domain.PrioritySLA) error {
	return nil
}

func (f *fakeSettingsRepo) UpdateBusinessHours(ctx context.Context, cfg domain.BusinessHoursConfig) error {
	return nil
}

func (f *fakeSettingsRepo) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	return f.settings.BusinessHours.Holidays, nil
}

func (f *fakeSettingsRepo) CreateHoliday(ctx context.Context, holiday *domain.Holiday) error {
	return nil
}

func (f *fakeSettingsRepo) DeleteHoliday(ctx context.Context, id string) error { return nil }

type fakeGate struct {
	claimed map[string]bool
}

func newFakeGate() *fakeGate {
	return &fakeGate{claimed: make(map[string]bool)}
}

func (g *fakeGate) AcquireOnce(ctx context.Context, key string, ttl time.Duration) bool {
	if g.claimed[key] {
		return false
	}
	g.claimed[key] = true
	return true
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *capturingDispatcher) typesSeen() []events.EventType {
	types := make([]events.EventType, 0, len(d.published))
	for _, e := range d.published {
		types = append(types, e.Type)
	}
	return types
}

func sweepSettings(enabled, businessOnly bool) domain.SLASettings {
	return domain.SLASettings{
		Policies: map[domain.TicketPriority]domain.PrioritySLA{
			domain.TicketPriorityUrgent: {
				ResponseTimeHours:   2,
				ResolutionTimeHours: 4,
				BusinessHoursOnly:   businessOnly,
				Enabled:             enabled,
			},
		},
		BusinessHours: domain.BusinessHoursConfig{
			StartTime:   domain.TimeOfDay{Hour: 9},
			EndTime:     domain.TimeOfDay{Hour: 17},
			WorkingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
			Timezone:    "UTC",
		},
	}
}

func newSweeper(t *testing.T, settings domain.SLASettings, tickets []domain.Ticket, now time.Time, dispatcher events.Dispatcher, gate AlertGate) (*BreachSweeper, *observability.Metrics) {
	t.Helper()
	logger := zap.NewNop()
	settingsService := service.NewSettingsService(&fakeSettingsRepo{settings: settings}, nil, nil, logger)
	ticketRepo := &fakeTickets{tickets: tickets}
	metrics := observability.NewMetrics()
	sweeper := NewBreachSweeper(config.SweeperConfig{
		Enabled:           true,
		Schedule:          "*/5 * * * *",
		AtRiskLeadMinutes: 30,
		TicketBatchSize:   100,
	}, SweeperDeps{
		Tickets:    ticketRepo,
		SLA:        service.NewSLAService(settingsService, ticketRepo),
		Gate:       gate,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Now:        func() time.Time { return now },
	})
	return sweeper, metrics
}

func TestSweepOnce_PublishesBreaches(t *testing.T) {
	now := time.Date(2025, 7, 15, 18, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{{
		ID:          "t1",
		ExternalKey: "TCK-0001",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityUrgent,
		CreatedAt:   now.Add(-10 * time.Hour),
	}}
	dispatcher := &capturingDispatcher{}
	sweeper, metrics := newSweeper(t, sweepSettings(true, false), tickets, now, dispatcher, newFakeGate())

	require.NoError(t, sweeper.SweepOnce(context.Background()))

	assert.ElementsMatch(t, []events.EventType{
		events.EventSLAResponseBreached,
		events.EventSLAResolutionBreached,
	}, dispatcher.typesSeen())
	assert.Equal(t, int64(1), metrics.SweepCount())
	assert.Equal(t, int64(1), metrics.BreachCount("response"))
	assert.Equal(t, int64(1), metrics.BreachCount("resolution"))

	payload, ok := dispatcher.published[0].Payload.(events.SLADeadlinePayload)
	require.True(t, ok)
	assert.Equal(t, "TCK-0001", payload.TicketKey)
	assert.True(t, payload.DetectedAt.Equal(now))
}

func TestSweepOnce_DedupesAcrossSweeps(t *testing.T) {
	now := time.Date(2025, 7, 15, 18, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{{
		ID:        "t1",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityUrgent,
		CreatedAt: now.Add(-10 * time.Hour),
	}}
	dispatcher := &capturingDispatcher{}
	sweeper, _ := newSweeper(t, sweepSettings(true, false), tickets, now, dispatcher, newFakeGate())

	require.NoError(t, sweeper.SweepOnce(context.Background()))
	require.NoError(t, sweeper.SweepOnce(context.Background()))

	assert.Len(t, dispatcher.published, 2)
}

func TestSweepOnce_RespondedTicketOnlyChecksResolution(t *testing.T) {
	now := time.Date(2025, 7, 15, 18, 0, 0, 0, time.UTC)
	responded := now.Add(-5 * time.Hour)
	tickets := []domain.Ticket{{
		ID:              "t1",
		Status:          domain.TicketStatusInProgress,
		Priority:        domain.TicketPriorityUrgent,
		CreatedAt:       now.Add(-10 * time.Hour),
		FirstResponseAt: &responded,
	}}
	dispatcher := &capturingDispatcher{}
	sweeper, _ := newSweeper(t, sweepSettings(true, false), tickets, now, dispatcher, newFakeGate())

	require.NoError(t, sweeper.SweepOnce(context.Background()))

	assert.Equal(t, []events.EventType{events.EventSLAResolutionBreached}, dispatcher.typesSeen())
}

func TestSweepOnce_AtRiskWithinLeadWindow(t *testing.T) {
	// Response due 2h after creation; with now 1h50m in and a 30m lead, the
	// response deadline is at risk but not breached.
	now := time.Date(2025, 7, 15, 11, 50, 0, 0, time.UTC)
	tickets := []domain.Ticket{{
		ID:        "t1",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityUrgent,
		CreatedAt: now.Add(-110 * time.Minute),
	}}
	dispatcher := &capturingDispatcher{}
	sweeper, _ := newSweeper(t, sweepSettings(true, false), tickets, now, dispatcher, newFakeGate())

	require.NoError(t, sweeper.SweepOnce(context.Background()))

	assert.Equal(t, []events.EventType{events.EventSLAResponseAtRisk}, dispatcher.typesSeen())
}

func TestSweepOnce_DisabledPriorityIgnored(t *testing.T) {
	now := time.Date(2025, 7, 15, 18, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{{
		ID:        "t1",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityUrgent,
		CreatedAt: now.Add(-100 * time.Hour),
	}}
	dispatcher := &capturingDispatcher{}
	sweeper, _ := newSweeper(t, sweepSettings(false, false), tickets, now, dispatcher, newFakeGate())

	require.NoError(t, sweeper.SweepOnce(context.Background()))

	assert.Empty(t, dispatcher.published)
}

func TestSweepOnce_ConfigurationErrorAbortsSweep(t *testing.T) {
	now := time.Date(2025, 7, 15, 18, 0, 0, 0, time.UTC)
	settings := sweepSettings(true, true)
	settings.BusinessHours.WorkingDays = nil
	tickets := []domain.Ticket{{
		ID:        "t1",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityUrgent,
		CreatedAt: now.Add(-10 * time.Hour),
	}}
	dispatcher := &capturingDispatcher{}
	sweeper, _ := newSweeper(t, settings, tickets, now, dispatcher, newFakeGate())

	err := sweeper.SweepOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, dispatcher.published)
}

type failingDispatcher struct{}

func (d *failingDispatcher) Publish(ctx context.Context, event events.Event) error {
	return errors.New("subscriber exploded")
}

func (d *failingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func TestSweepOnce_LogsFailedEventHandlers(t *testing.T) {
	now := time.Date(2025, 7, 15, 18, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{{
		ID:        "t1",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityUrgent,
		CreatedAt: now.Add(-10 * time.Hour),
	}}

	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)
	settingsService := service.NewSettingsService(&fakeSettingsRepo{settings: sweepSettings(true, false)}, nil, nil, logger)
	ticketRepo := &fakeTickets{tickets: tickets}
	sweeper := NewBreachSweeper(config.SweeperConfig{
		Enabled:         true,
		Schedule:        "*/5 * * * *",
		TicketBatchSize: 100,
	}, SweeperDeps{
		Tickets:    ticketRepo,
		SLA:        service.NewSLAService(settingsService, ticketRepo),
		Gate:       newFakeGate(),
		Dispatcher: &failingDispatcher{},
		Metrics:    observability.NewMetrics(),
		Logger:     logger,
		Now:        func() time.Time { return now },
	})

	require.NoError(t, sweeper.SweepOnce(context.Background()))
	assert.NotZero(t, logs.FilterMessage("event handlers failed").Len())
}

func TestSweeper_StartAndStop(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	sweeper, _ := newSweeper(t, sweepSettings(true, false), nil, time.Now(), dispatcher, newFakeGate())

	require.NoError(t, sweeper.Start())
	sweeper.Stop()
}
