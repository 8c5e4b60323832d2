package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// SettingsRepository manages persisted SLA settings: per-priority policies,
// the shared business-hours row and the holiday list.
type SettingsRepository interface {
	LoadSettings(ctx context.Context) (*domain.SLASettings, error)
	UpsertPolicy(ctx context.Context, priority domain.TicketPriority, policy domain.PrioritySLA) error
	UpdateBusinessHours(ctx context.Context, cfg domain.BusinessHoursConfig) error
	ListHolidays(ctx context.Context) ([]domain.Holiday, error)
	CreateHoliday(ctx context.Context, holiday *domain.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository builds the repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

// LoadSettings assembles one immutable snapshot from the three tables.
func (r *settingsRepository) LoadSettings(ctx context.Context) (*domain.SLASettings, error) {
	policies, err := r.loadPolicies(ctx)
	if err != nil {
		return nil, err
	}
	hours, err := r.loadBusinessHours(ctx)
	if err != nil {
		return nil, err
	}
	holidays, err := r.ListHolidays(ctx)
	if err != nil {
		return nil, err
	}
	hours.Holidays = holidays
	return &domain.SLASettings{Policies: policies, BusinessHours: hours}, nil
}

func (r *settingsRepository) loadPolicies(ctx context.Context) (map[domain.TicketPriority]domain.PrioritySLA, error) {
	const query = `
        SELECT priority, response_time_hours, resolution_time_hours, business_hours_only, enabled
        FROM sla_policies`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make(map[domain.TicketPriority]domain.PrioritySLA)
	for rows.Next() {
		var priority domain.TicketPriority
		var policy domain.PrioritySLA
		if err := rows.Scan(&priority, &policy.ResponseTimeHours, &policy.ResolutionTimeHours, &policy.BusinessHoursOnly, &policy.Enabled); err != nil {
			return nil, err
		}
		policies[priority] = policy
	}
	return policies, rows.Err()
}

func (r *settingsRepository) loadBusinessHours(ctx context.Context) (domain.BusinessHoursConfig, error) {
	const query = `
        SELECT start_time, end_time, working_days, timezone
        FROM business_hours WHERE id = 1`
	var startRaw, endRaw, timezone string
	var days []int32
	if err := r.pool.QueryRow(ctx, query).Scan(&startRaw, &endRaw, &days, &timezone); err != nil {
		return domain.BusinessHoursConfig{}, err
	}
	start, err := domain.ParseTimeOfDay(startRaw)
	if err != nil {
		return domain.BusinessHoursConfig{}, err
	}
	end, err := domain.ParseTimeOfDay(endRaw)
	if err != nil {
		return domain.BusinessHoursConfig{}, err
	}
	weekdays := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		weekdays = append(weekdays, time.Weekday(d))
	}
	return domain.BusinessHoursConfig{
		StartTime:   start,
		EndTime:     end,
		WorkingDays: weekdays,
		Timezone:    timezone,
	}, nil
}

func (r *settingsRepository) UpsertPolicy(ctx context.Context, priority domain.TicketPriority, policy domain.PrioritySLA) error {
	const query = `
        INSERT INTO sla_policies (priority, response_time_hours, resolution_time_hours, business_hours_only, enabled)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (priority) DO UPDATE SET
            response_time_hours=EXCLUDED.response_time_hours,
            resolution_time_hours=EXCLUDED.resolution_time_hours,
            business_hours_only=EXCLUDED.business_hours_only,
            enabled=EXCLUDED.enabled,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		priority,
		policy.ResponseTimeHours,
		policy.ResolutionTimeHours,
		policy.BusinessHoursOnly,
		policy.Enabled,
	)
	return err
}

func (r *settingsRepository) UpdateBusinessHours(ctx context.Context, cfg domain.BusinessHoursConfig) error {
	days := make([]int32, 0, len(cfg.WorkingDays))
	for _, wd := range cfg.WorkingDays {
		days = append(days, int32(wd))
	}
	const query = `
        INSERT INTO business_hours (id, start_time, end_time, working_days, timezone)
        VALUES (1,$1,$2,$3,$4)
        ON CONFLICT (id) DO UPDATE SET
            start_time=EXCLUDED.start_time,
            end_time=EXCLUDED.end_time,
            working_days=EXCLUDED.working_days,
            timezone=EXCLUDED.timezone,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		cfg.StartTime.String(),
		cfg.EndTime.String(),
		days,
		cfg.Timezone,
	)
	return err
}

func (r *settingsRepository) ListHolidays(ctx context.Context) ([]domain.Holiday, error) {
	const query = `
        SELECT id, name, holiday_date, is_recurring
        FROM holidays ORDER BY holiday_date`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Holiday
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.IsRecurring); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

func (r *settingsRepository) CreateHoliday(ctx context.Context, holiday *domain.Holiday) error {
	const query = `
        INSERT INTO holidays (name, holiday_date, is_recurring)
        VALUES ($1,$2,$3)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		holiday.Name,
		holiday.Date,
		holiday.IsRecurring,
	).Scan(&holiday.ID)
}

func (r *settingsRepository) DeleteHoliday(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM holidays WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
