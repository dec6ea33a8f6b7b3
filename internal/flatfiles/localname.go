package flatfiles

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// LocalName flattens a remote key into a file name. Keys with three or more
// segments keep the first two and the last: "a/b/2024/06/f.csv.gz" -> "a_b_f.csv.gz".
func LocalName(key string) string {
	key = strings.TrimSpace(key)
	parts := strings.Split(key, "/")
	if len(parts) < 3 {
		return key
	}
	return parts[0] + "_" + parts[1] + "_" + parts[len(parts)-1]
}

// Matcher selects keys by prefix pattern and embedded date
type Matcher struct {
	patterns []*regexp.Regexp
	cutoff   time.Time
}

// NewMatcher compiles "{prefix}/YYYY/MM/{date}.csv.gz" for each prefix. Only
// dates strictly after cutoff are accepted.
func NewMatcher(prefixes []string, cutoff time.Time) (*Matcher, error) {
	m := &Matcher{cutoff: cutoff}
	for _, p := range prefixes {
		re, err := regexp.Compile(p + `/\d{4}/\d{2}/([\d-]+)\.csv\.gz`)
		if err != nil {
			return nil, fmt.Errorf("invalid file prefix %q: %w", p, err)
		}
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// Match returns the date embedded in key when key is in scope.
func (m *Matcher) Match(key string) (time.Time, bool) {
	for _, re := range m.patterns {
		sub := re.FindStringSubmatch(key)
		if sub == nil {
			continue
		}
		d, err := time.Parse("2006-01-02", sub[1])
		if err != nil {
			continue
		}
		if d.After(m.cutoff) {
			return d, true
		}
	}
	return time.Time{}, false
}
