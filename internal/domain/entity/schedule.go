package entity

import (
	"fmt"
	"time"
)

// Schedule is a daily wall-clock time in a time zone.
type Schedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// ParseSchedule builds a Schedule from an HH:MM value and an IANA zone name.
func ParseSchedule(clock, timezone string) (Schedule, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid time format %q, use HH:MM (24-hour format)", clock)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid time zone %q: %w", timezone, err)
	}

	return Schedule{Hour: t.Hour(), Minute: t.Minute(), Location: loc}, nil
}

func (s Schedule) String() string {
	name := "UTC"
	if s.Location != nil {
		name = s.Location.String()
	}
	return fmt.Sprintf("%02d:%02d %s", s.Hour, s.Minute, name)
}
