package splits

import (
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/epeers/refsync/internal/models"
)

// ParseRatio reads provider split text "A/B" or "A:B" as after=A, before=B.
// Anything else is reported as not ok and yields the no-op ratio 1/1.
func ParseRatio(text string) (before, after float64, ok bool) {
	sep := ":"
	if strings.Contains(text, "/") {
		sep = "/"
	}

	var parts []string
	for _, p := range strings.Split(text, sep) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 2 {
		return 1, 1, false
	}

	a, errA := strconv.ParseFloat(parts[0], 64)
	b, errB := strconv.ParseFloat(parts[1], 64)
	if errA != nil || errB != nil || a <= 0 || b < 0 {
		return 1, 1, false
	}
	return b, a, true
}

// FromText builds a split from ratio text. Malformed text is logged and
// produces a split whose factor is 1.
func FromText(source, code string, date time.Time, text string) models.Split {
	before, after, ok := ParseRatio(text)
	if !ok {
		log.WithFields(log.Fields{"code": code, "ratio": text}).Warn("could not parse split ratio, using 1/1")
	}
	return models.Split{
		Source:    source,
		Code:      code,
		SplitDate: models.DateOf(date),
		Before:    before,
		After:     after,
	}
}
