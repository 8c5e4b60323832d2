package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// maxCalendarScanDays bounds every day-by-day calendar search. A full year
// plus a leap day is enough to reach the next working day of any calendar
// that has one at all.
const maxCalendarScanDays = 366

// BusinessCalendar answers calendar questions against one immutable
// BusinessHoursConfig: whether an instant falls inside a business window,
// whether a date is a holiday, and where the next open window starts.
// The zero value is not usable; build one with NewBusinessCalendar.
type BusinessCalendar struct {
	cfg domain.BusinessHoursConfig
	loc *time.Location
}

// NewBusinessCalendar validates the config and resolves its timezone.
// Invalid configs yield a ConfigurationError.
func NewBusinessCalendar(cfg domain.BusinessHoursConfig) (BusinessCalendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return BusinessCalendar{}, &ConfigurationError{Reason: fmt.Sprintf("unknown timezone %q", cfg.Timezone)}
	}
	if !cfg.StartTime.Before(cfg.EndTime) {
		return BusinessCalendar{}, &ConfigurationError{
			Reason: fmt.Sprintf("business window start %s must be before end %s", cfg.StartTime, cfg.EndTime),
		}
	}
	if len(cfg.WorkingDays) == 0 {
		return BusinessCalendar{}, &ConfigurationError{Reason: "working weekday set is empty"}
	}
	return BusinessCalendar{cfg: cfg, loc: loc}, nil
}

// Location returns the calendar's resolved timezone.
func (c BusinessCalendar) Location() *time.Location {
	return c.loc
}

// IsHoliday reports whether the instant's calendar date (in the calendar's
// timezone) is blocked by a holiday. Recurring holidays match month and day
// in any year; one-time holidays match only their exact date.
func (c BusinessCalendar) IsHoliday(t time.Time) bool {
	year, month, day := t.In(c.loc).Date()
	for _, h := range c.cfg.Holidays {
		hy, hm, hd := h.Date.Date()
		if hm != month || hd != day {
			continue
		}
		if h.IsRecurring || hy == year {
			return true
		}
	}
	return false
}

// IsBusinessInstant reports whether t lies inside an open business window:
// a working weekday, time of day within [StartTime, EndTime), and not a holiday.
func (c BusinessCalendar) IsBusinessInstant(t time.Time) bool {
	local := t.In(c.loc)
	if !c.isWorkingDate(local) {
		return false
	}
	dayStart := c.cfg.StartTime.OnDate(local, c.loc)
	dayEnd := c.cfg.EndTime.OnDate(local, c.loc)
	return !local.Before(dayStart) && local.Before(dayEnd)
}

// NextBusinessWindowStart returns the earliest instant at or after t at which
// a business window is open. Scans forward one calendar day at a time, so a
// holiday block of arbitrary length is skipped; exceeding the scan bound
// yields a ConfigurationError.
func (c BusinessCalendar) NextBusinessWindowStart(t time.Time) (time.Time, error) {
	cursor := t.In(c.loc)
	for i := 0; i < maxCalendarScanDays; i++ {
		if c.isWorkingDate(cursor) {
			dayStart := c.cfg.StartTime.OnDate(cursor, c.loc)
			dayEnd := c.cfg.EndTime.OnDate(cursor, c.loc)
			if cursor.Before(dayStart) {
				return dayStart, nil
			}
			if cursor.Before(dayEnd) {
				return cursor, nil
			}
		}
		cursor = c.cfg.StartTime.OnDate(cursor.AddDate(0, 0, 1), c.loc)
	}
	return time.Time{}, &ConfigurationError{
		Reason: fmt.Sprintf("no business window found within %d days of %s", maxCalendarScanDays, t.Format(time.RFC3339)),
	}
}

// WindowEnd returns the EndTime instant on the same calendar date as t.
// The caller is expected to pass an instant inside or at the start of a window.
func (c BusinessCalendar) WindowEnd(t time.Time) time.Time {
	return c.cfg.EndTime.OnDate(t.In(c.loc), c.loc)
}

func (c BusinessCalendar) isWorkingDate(local time.Time) bool {
	return c.cfg.IsWorkingDay(local.Weekday()) && !c.IsHoliday(local)
}
