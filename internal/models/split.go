package models

import "time"

// Split is a corporate split event. After/Before is the share ratio:
// a 2-for-1 split has After=2, Before=1.
type Split struct {
	Source    string    `json:"source"`
	Code      string    `json:"code"`
	SplitDate time.Time `json:"split_date"`
	Before    float64   `json:"before"`
	After     float64   `json:"after"`
}

// Factor is the multiplier applied to prices dated before the split.
func (s Split) Factor() float64 {
	if s.Before == 0 {
		return 1
	}
	return s.After / s.Before
}
