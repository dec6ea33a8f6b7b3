package models

import (
	"math"
	"time"
)

// EodPrice is a raw end-of-day bar as stored by upstream ingestion.
type EodPrice struct {
	Source  string    `json:"source"`
	Code    string    `json:"code"`
	DateEod time.Time `json:"date_eod"`
	Open    float64   `json:"open"`
	High    float64   `json:"high"`
	Low     float64   `json:"low"`
	Close   float64   `json:"close"`
	Volume  int64     `json:"volume"`
}

// AdjustedEodPrice wraps a raw bar with the split factor that applies to it.
// It is derived on demand and never persisted.
type AdjustedEodPrice struct {
	EodPrice
	Factor float64 `json:"factor"`
}

// NewAdjustedEodPrice returns an adjusted price. A zero factor means unadjusted.
func NewAdjustedEodPrice(p EodPrice, factor float64) AdjustedEodPrice {
	if factor == 0 {
		factor = 1
	}
	return AdjustedEodPrice{EodPrice: p, Factor: factor}
}

func (a AdjustedEodPrice) AdjustedOpen() float64  { return a.Open * a.Factor }
func (a AdjustedEodPrice) AdjustedHigh() float64  { return a.High * a.Factor }
func (a AdjustedEodPrice) AdjustedLow() float64   { return a.Low * a.Factor }
func (a AdjustedEodPrice) AdjustedClose() float64 { return a.Close * a.Factor }

// AdjustedVolume scales volume the opposite way so that price × volume is preserved.
func (a AdjustedEodPrice) AdjustedVolume() int64 {
	return int64(math.Round(float64(a.Volume) / a.Factor))
}
