package service

import (
	"time"

	"github.com/diegoclair/screenshot-bot/internal/domain/entity"
)

// maxDaysAhead bounds the search for a valid wall-clock occurrence. Zones skip at most
// one calendar day (e.g. Pacific/Apia in 2011), so a few days always suffice.
const maxDaysAhead = 3

// NextFire returns the earliest instant strictly after now whose wall clock in the
// schedule's location reads Hour:Minute:00.000.
//
// Days where that wall clock does not exist (DST gap) are skipped. On days where it
// exists twice (DST overlap) only the first occurrence counts, so a calendar day
// never yields two fire instants.
func NextFire(now time.Time, schedule entity.Schedule) time.Time {
	loc := schedule.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	for day := 0; day <= maxDaysAhead; day++ {
		candidate := time.Date(local.Year(), local.Month(), local.Day()+day, schedule.Hour, schedule.Minute, 0, 0, loc)

		// time.Date normalizes a non-existent wall clock into the next offset.
		if candidate.Hour() != schedule.Hour || candidate.Minute() != schedule.Minute {
			continue
		}

		fire := candidate
		if earlier, ok := earlierOccurrence(candidate); ok {
			fire = earlier
		}
		if fire.After(now) {
			return fire
		}
	}

	// Unreachable for real zones; fall back to elapsed time.
	return now.Add(24 * time.Hour)
}

// earlierOccurrence finds a prior instant with the same wall clock as t on the same day,
// which only exists when clocks were turned back.
func earlierOccurrence(t time.Time) (time.Time, bool) {
	_, offset := t.Zone()
	_, beforeOffset := t.Add(-3 * time.Hour).Zone()

	shift := time.Duration(beforeOffset-offset) * time.Second
	if shift <= 0 {
		return time.Time{}, false
	}

	earlier := t.Add(-shift)
	if earlier.Hour() != t.Hour() || earlier.Minute() != t.Minute() || earlier.Day() != t.Day() {
		return time.Time{}, false
	}
	return earlier, true
}
