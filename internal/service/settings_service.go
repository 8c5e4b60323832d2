package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// SettingsSnapshotCache caches assembled SLASettings snapshots.
type SettingsSnapshotCache interface {
	Get(ctx context.Context) (*domain.SLASettings, bool)
	Set(ctx context.Context, settings *domain.SLASettings)
	Invalidate(ctx context.Context)
}

// SettingsService owns reads and admin edits of the SLA configuration.
type SettingsService struct {
	repo       repository.SettingsRepository
	cache      SettingsSnapshotCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(repo repository.SettingsRepository, cache SettingsSnapshotCache, dispatcher events.Dispatcher, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, dispatcher: dispatcher, logger: logger}
}

// Snapshot returns the current immutable settings snapshot, cache first.
func (s *SettingsService) Snapshot(ctx context.Context) (*domain.SLASettings, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, settings)
	}
	return settings, nil
}

// UpdatePolicy upserts the SLA policy for one priority.
func (s *SettingsService) UpdatePolicy(ctx context.Context, priority domain.TicketPriority, policy domain.PrioritySLA) error {
	if !knownPriority(priority) {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	if policy.ResponseTimeHours < 0 || policy.ResolutionTimeHours < 0 {
		return apperrors.NewValidationError("sla hours must be non-negative", nil)
	}
	if err := s.repo.UpsertPolicy(ctx, priority, policy); err != nil {
		return err
	}
	s.settingsChanged(ctx, "policy:"+string(priority))
	return nil
}

// UpdateBusinessHours replaces the shared business calendar after validating
// that it can actually produce working windows.
func (s *SettingsService) UpdateBusinessHours(ctx context.Context, cfg domain.BusinessHoursConfig) error {
	if _, err := sla.NewBusinessCalendar(cfg); err != nil {
		return err
	}
	if err := s.repo.UpdateBusinessHours(ctx, cfg); err != nil {
		return err
	}
	s.settingsChanged(ctx, "business_hours")
	return nil
}

// Holidays lists the configured holidays.
func (s *SettingsService) Holidays(ctx context.Context) ([]domain.Holiday, error) {
	return s.repo.ListHolidays(ctx)
}

// AddHoliday stores a new holiday.
func (s *SettingsService) AddHoliday(ctx context.Context, name string, date time.Time, recurring bool) (*domain.Holiday, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("holiday name required", nil)
	}
	holiday := &domain.Holiday{
		Name:        name,
		Date:        date,
		IsRecurring: recurring,
	}
	if err := s.repo.CreateHoliday(ctx, holiday); err != nil {
		return nil, err
	}
	s.settingsChanged(ctx, "holidays")
	return holiday, nil
}

// RemoveHoliday deletes a holiday by id.
func (s *SettingsService) RemoveHoliday(ctx context.Context, id string) error {
	if err := s.repo.DeleteHoliday(ctx, id); err != nil {
		return err
	}
	s.settingsChanged(ctx, "holidays")
	return nil
}

type holidayCalendarFile struct {
	Holidays []struct {
		Name      string `yaml:"name"`
		Date      string `yaml:"date"`
		Recurring bool   `yaml:"recurring"`
	} `yaml:"holidays"`
}

// ImportHolidayCalendar loads a YAML holiday calendar and stores every entry.
// Used both for the startup seed file and the admin import endpoint.
func (s *SettingsService) ImportHolidayCalendar(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read holiday calendar: %w", err)
	}
	return s.ImportHolidayCalendarBytes(ctx, raw)
}

// ImportHolidayCalendarBytes parses and stores a YAML holiday calendar payload.
func (s *SettingsService) ImportHolidayCalendarBytes(ctx context.Context, raw []byte) (int, error) {
	var file holidayCalendarFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, apperrors.NewValidationError("invalid holiday calendar", map[string]any{"error": err.Error()})
	}

	imported := 0
	for _, entry := range file.Holidays {
		date, err := time.Parse("2006-01-02", entry.Date)
		if err != nil {
			return imported, apperrors.NewValidationError("invalid holiday date", map[string]any{"date": entry.Date})
		}
		holiday := &domain.Holiday{Name: entry.Name, Date: date, IsRecurring: entry.Recurring}
		if err := s.repo.CreateHoliday(ctx, holiday); err != nil {
			return imported, err
		}
		imported++
	}
	if imported > 0 {
		s.settingsChanged(ctx, "holidays")
	}
	return imported, nil
}

// SeedHolidays imports the configured seed file when no holidays exist yet.
func (s *SettingsService) SeedHolidays(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	existing, err := s.repo.ListHolidays(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	count, err := s.ImportHolidayCalendar(ctx, path)
	if err != nil {
		return err
	}
	s.logger.Info("seeded holiday calendar", zap.String("file", path), zap.Int("holidays", count))
	return nil
}

func (s *SettingsService) settingsChanged(ctx context.Context, section string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSLASettingsUpdated,
		Timestamp: time.Now(),
		Payload:   events.SLASettingsUpdatedPayload{Section: section},
	})
	if err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("section", section),
			zap.Error(err))
	}
}

func knownPriority(p domain.TicketPriority) bool {
	for _, candidate := range domain.Priorities() {
		if candidate == p {
			return true
		}
	}
	return false
}
