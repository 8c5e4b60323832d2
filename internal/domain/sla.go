package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date, e.g. the 09:00 opening of a
// business window. The zero value is midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour) into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

// MinuteOfDay returns minutes elapsed since midnight.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinuteOfDay() < other.MinuteOfDay()
}

// OnDate anchors the time of day onto the calendar date of ref in loc.
func (t TimeOfDay) OnDate(ref time.Time, loc *time.Location) time.Time {
	local := ref.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// PrioritySLA holds the per-priority response and resolution targets.
type PrioritySLA struct {
	ResponseTimeHours   float64
	ResolutionTimeHours float64
	BusinessHoursOnly   bool
	Enabled             bool
}

// Holiday is a non-working date. A recurring holiday blocks the same
// month and day every year; a one-time holiday blocks only its exact date.
type Holiday struct {
	ID          string
	Name        string
	Date        time.Time
	IsRecurring bool
}

// BusinessHoursConfig describes the shared business calendar: the daily
// [StartTime, EndTime) window on working weekdays in Timezone, minus holidays.
type BusinessHoursConfig struct {
	StartTime   TimeOfDay
	EndTime     TimeOfDay
	WorkingDays []time.Weekday
	Timezone    string
	Holidays    []Holiday
}

// IsWorkingDay reports whether the weekday is part of the working week.
func (c BusinessHoursConfig) IsWorkingDay(d time.Weekday) bool {
	for _, wd := range c.WorkingDays {
		if wd == d {
			return true
		}
	}
	return false
}

// SLASettings is the immutable configuration snapshot the calculator reads:
// one policy per priority plus the shared business calendar.
type SLASettings struct {
	Policies      map[TicketPriority]PrioritySLA
	BusinessHours BusinessHoursConfig
}

// SLAExpectation carries the two computed deadlines for a ticket. It has no
// persisted identity; each calculation builds a fresh value owned by the caller.
type SLAExpectation struct {
	ResponseExpectedBy   time.Time
	ResolutionExpectedBy time.Time
}
