package services

import (
	"fmt"
	"time"
)

// EventSchedule is the stored representation of one start/end instant pair.
type EventSchedule struct {
	SpecificDate time.Time
	StartTime    string // HH:MM:SS
	EndTime      string // HH:MM:SS
	DayOfWeek    int    // 0=Sunday .. 6=Saturday
}

// DeriveEventSchedule computes the date, wall-clock times, and weekday for
// an event from its start and end instants.
//
// Known limitation: no owner timezone is tracked, so the derivation runs in
// UTC. An owner whose local day differs from the UTC day will see the event
// filed under the UTC date.
func DeriveEventSchedule(start, end time.Time) (EventSchedule, error) {
	if start.IsZero() || end.IsZero() {
		return EventSchedule{}, fmt.Errorf("start and end are required")
	}
	if !end.After(start) {
		return EventSchedule{}, fmt.Errorf("end must be after start")
	}

	start = start.UTC()
	end = end.UTC()

	return EventSchedule{
		SpecificDate: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:    start.Format("15:04:05"),
		EndTime:      end.Format("15:04:05"),
		DayOfWeek:    int(start.Weekday()),
	}, nil
}
