package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// NextMarketDate predicts the date of the next end-of-day data release.
// It returns the next weekday at 4:30 PM New York time, in UTC.
func NextMarketDate(input time.Time) time.Time {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Errorf("Failed to load location 'America/New_York': %v. Falling back to UTC.", err)
		loc = time.UTC
	}
	nowET := input.In(loc)

	next := time.Date(nowET.Year(), nowET.Month(), nowET.Day(), 16, 30, 0, 0, loc)
	if nowET.After(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next.UTC()
}

// LookbackCutoff returns the calendar date years before now, at midnight UTC.
// The sign of years is ignored.
func LookbackCutoff(now time.Time, years int) time.Time {
	if years < 0 {
		years = -years
	}
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(-years, 0, 0)
}
