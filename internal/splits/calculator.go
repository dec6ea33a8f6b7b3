package splits

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/epeers/refsync/internal/models"
)

// ErrUnconsumedSplits marks a price series that ends before its final split.
var ErrUnconsumedSplits = errors.New("split factors not consumed by price series")

// IntegrityError reports a price series that never reached its final split date,
// so later factors could not be verified against it.
type IntegrityError struct {
	Code       string
	FinalSplit time.Time
	LastPrice  time.Time
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: last price %s precedes final split %s: %v",
		e.Code, e.LastPrice.Format(models.DateLayout), e.FinalSplit.Format(models.DateLayout), ErrUnconsumedSplits)
}

func (e *IntegrityError) Unwrap() error { return ErrUnconsumedSplits }

// Factor is the cumulative multiplier for prices dated strictly before Date.
type Factor struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"factor"`
}

// CumulativeFactors orders splits by date and pairs each with the product of
// its own factor and every later split's factor. Splits sharing a date are
// merged into one factor.
func CumulativeFactors(splits []models.Split) []Factor {
	ordered := slices.Clone(splits)
	slices.SortStableFunc(ordered, func(a, b models.Split) int {
		return a.SplitDate.Compare(b.SplitDate)
	})

	factors := make([]Factor, 0, len(ordered))
	for _, s := range ordered {
		d := models.DateOf(s.SplitDate)
		if n := len(factors); n > 0 && factors[n-1].Date.Equal(d) {
			factors[n-1].Value *= s.Factor()
			continue
		}
		factors = append(factors, Factor{Date: d, Value: s.Factor()})
	}

	for i := len(factors) - 2; i >= 0; i-- {
		factors[i].Value *= factors[i+1].Value
	}
	return factors
}

// Adjust applies factors to prices in a single forward pass and returns one
// adjusted price per input, ordered by date.
//
// A price dated before the current split takes that split's cumulative factor.
// A price on a split date already reflects that split and takes the next one's.
// Prices on or after the final split are unadjusted. When the series ends
// before the final split the full result is still returned together with an
// *IntegrityError.
func Adjust(prices []models.EodPrice, factors []Factor) ([]models.AdjustedEodPrice, error) {
	if len(prices) == 0 {
		return nil, nil
	}

	ordered := slices.Clone(prices)
	slices.SortStableFunc(ordered, func(a, b models.EodPrice) int {
		return a.DateEod.Compare(b.DateEod)
	})

	out := make([]models.AdjustedEodPrice, 0, len(ordered))
	if len(factors) == 0 {
		for _, p := range ordered {
			out = append(out, models.NewAdjustedEodPrice(p, 1))
		}
		return out, nil
	}

	last := len(factors) - 1
	f := 0
	for _, p := range ordered {
		d := models.DateOf(p.DateEod)

		// split fell between two bars (weekend or holiday)
		for f < last && d.After(factors[f].Date) {
			f++
		}

		switch {
		case f == last && !d.Before(factors[f].Date):
			out = append(out, models.NewAdjustedEodPrice(p, 1))
		case d.Before(factors[f].Date):
			out = append(out, models.NewAdjustedEodPrice(p, factors[f].Value))
		default:
			f++
			out = append(out, models.NewAdjustedEodPrice(p, factors[f].Value))
		}
	}

	lastPrice := models.DateOf(ordered[len(ordered)-1].DateEod)
	if lastPrice.Before(factors[last].Date) {
		return out, &IntegrityError{
			Code:       ordered[0].Code,
			FinalSplit: factors[last].Date,
			LastPrice:  lastPrice,
		}
	}
	return out, nil
}
