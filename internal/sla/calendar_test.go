package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
)

func weekdayConfig(holidays ...domain.Holiday) domain.BusinessHoursConfig {
	return domain.BusinessHoursConfig{
		StartTime:   domain.TimeOfDay{Hour: 9},
		EndTime:     domain.TimeOfDay{Hour: 17},
		WorkingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		Timezone:    "UTC",
		Holidays:    holidays,
	}
}

func mustCalendar(t *testing.T, cfg domain.BusinessHoursConfig) BusinessCalendar {
	t.Helper()
	cal, err := NewBusinessCalendar(cfg)
	require.NoError(t, err)
	return cal
}

func TestNewBusinessCalendar_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.BusinessHoursConfig)
	}{
		{"unknown timezone", func(c *domain.BusinessHoursConfig) { c.Timezone = "Mars/Olympus" }},
		{"start after end", func(c *domain.BusinessHoursConfig) {
			c.StartTime = domain.TimeOfDay{Hour: 18}
		}},
		{"start equals end", func(c *domain.BusinessHoursConfig) {
			c.StartTime = c.EndTime
		}},
		{"empty working days", func(c *domain.BusinessHoursConfig) { c.WorkingDays = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := weekdayConfig()
			tc.mutate(&cfg)
			_, err := NewBusinessCalendar(cfg)
			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestIsHoliday_RecurringMatchesAnyYear(t *testing.T) {
	christmas := domain.Holiday{
		Name:        "Christmas",
		Date:        time.Date(2020, 12, 25, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
	}
	cal := mustCalendar(t, weekdayConfig(christmas))

	assert.True(t, cal.IsHoliday(time.Date(2025, 12, 25, 15, 0, 0, 0, time.UTC)))
	assert.True(t, cal.IsHoliday(time.Date(2031, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsHoliday(time.Date(2025, 12, 24, 12, 0, 0, 0, time.UTC)))
}

func TestIsHoliday_OneTimeMatchesExactDateOnly(t *testing.T) {
	maintenance := domain.Holiday{
		Name: "Office move",
		Date: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
	}
	cal := mustCalendar(t, weekdayConfig(maintenance))

	assert.True(t, cal.IsHoliday(time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsHoliday(time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC)))
	assert.False(t, cal.IsHoliday(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)))
}

func TestIsBusinessInstant(t *testing.T) {
	holiday := domain.Holiday{
		Name: "One-off closure",
		Date: time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC),
	}
	cal := mustCalendar(t, weekdayConfig(holiday))

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"inside window", time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC), true},
		{"exactly at open", time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC), true},
		{"exactly at close", time.Date(2025, 7, 15, 17, 0, 0, 0, time.UTC), false},
		{"before open", time.Date(2025, 7, 15, 8, 59, 0, 0, time.UTC), false},
		{"saturday", time.Date(2025, 7, 19, 10, 0, 0, 0, time.UTC), false},
		{"sunday", time.Date(2025, 7, 20, 10, 0, 0, 0, time.UTC), false},
		{"holiday inside window", time.Date(2025, 7, 16, 10, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cal.IsBusinessInstant(tc.at))
		})
	}
}

func TestNextBusinessWindowStart(t *testing.T) {
	christmas := domain.Holiday{
		Name:        "Christmas",
		Date:        time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
	}
	boxing := domain.Holiday{
		Name:        "Boxing Day",
		Date:        time.Date(2025, 12, 26, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
	}
	cal := mustCalendar(t, weekdayConfig(christmas, boxing))

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{
			"inside window stays put",
			time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC),
			time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			"before open snaps to open",
			time.Date(2025, 7, 15, 6, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			"after close moves to next day",
			time.Date(2025, 7, 15, 18, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			"friday evening skips the weekend",
			time.Date(2025, 7, 18, 17, 30, 0, 0, time.UTC),
			time.Date(2025, 7, 21, 9, 0, 0, 0, time.UTC),
		},
		{
			"multi-day holiday block skipped in one call",
			// Thu 25 and Fri 26 are holidays, then the weekend: next window is Mon 29.
			time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 12, 29, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cal.NextBusinessWindowStart(tc.at)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %s, want %s", got, tc.want)
		})
	}
}

// blanketHolidays marks every month/day of the year as a recurring holiday,
// so no scan horizon can ever find an open window.
func blanketHolidays() []domain.Holiday {
	var holidays []domain.Holiday
	for d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		holidays = append(holidays, domain.Holiday{Name: "closed", Date: d, IsRecurring: true})
	}
	return holidays
}

func TestNextBusinessWindowStart_ScanBoundExhausted(t *testing.T) {
	cal := mustCalendar(t, weekdayConfig(blanketHolidays()...))

	_, err := cal.NextBusinessWindowStart(time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestNextBusinessWindowStart_HonorsTimezone(t *testing.T) {
	cfg := weekdayConfig()
	cfg.Timezone = "America/New_York"
	cal := mustCalendar(t, cfg)

	// 12:00 UTC on 2025-07-15 is 08:00 in New York, before the window opens.
	got, err := cal.NextBusinessWindowStart(time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 7, 15, 9, 0, 0, 0, ny)))
}

func TestWindowEnd(t *testing.T) {
	cal := mustCalendar(t, weekdayConfig())
	end := cal.WindowEnd(time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC))
	assert.True(t, end.Equal(time.Date(2025, 7, 15, 17, 0, 0, 0, time.UTC)))
}
