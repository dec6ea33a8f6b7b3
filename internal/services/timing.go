package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// TrackTime logs the time elapsed since start under op. Call it with defer.
func TrackTime(op string, start time.Time) {
	log.WithFields(log.Fields{
		"op":         op,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Debug("timing")
}
