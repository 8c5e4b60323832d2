package sla

import (
	"fmt"
	"time"
)

// AdvanceBusinessHours returns the instant at which the given number of
// business hours has elapsed after start. Time outside business windows
// contributes nothing: the cursor snaps to the next open window, consumes
// its remaining capacity, and spills what is left into the window after
// that, re-resolving the next valid day each time so weekends and multi-day
// holiday blocks are skipped correctly.
func (c BusinessCalendar) AdvanceBusinessHours(start time.Time, hours float64) (time.Time, error) {
	remaining, err := durationFromHours(hours)
	if err != nil {
		return time.Time{}, err
	}

	cursor, err := c.NextBusinessWindowStart(start)
	if err != nil {
		return time.Time{}, err
	}

	for i := 0; i < maxCalendarScanDays; i++ {
		capacity := c.WindowEnd(cursor).Sub(cursor)
		if remaining <= capacity {
			return cursor.Add(remaining), nil
		}
		remaining -= capacity

		// WindowEnd is exclusive, so resolving from it lands on a later window.
		cursor, err = c.NextBusinessWindowStart(c.WindowEnd(cursor))
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Time{}, &ConfigurationError{
		Reason: fmt.Sprintf("advancing %v business hours from %s exceeded %d windows", hours, start.Format(time.RFC3339), maxCalendarScanDays),
	}
}

// Advance24x7 returns start plus the given hours on a 24/7 clock, with no
// calendar lookup at all.
func Advance24x7(start time.Time, hours float64) (time.Time, error) {
	d, err := durationFromHours(hours)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(d), nil
}

func durationFromHours(hours float64) (time.Duration, error) {
	if hours < 0 {
		return 0, &ConfigurationError{Reason: fmt.Sprintf("negative sla duration %v hours", hours)}
	}
	return time.Duration(hours * float64(time.Hour)), nil
}
