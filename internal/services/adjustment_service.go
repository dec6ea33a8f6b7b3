package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/epeers/refsync/internal/cache"
	"github.com/epeers/refsync/internal/models"
	"github.com/epeers/refsync/internal/splits"
)

// PriceReader loads raw end-of-day prices. A zero endDate means no upper bound.
type PriceReader interface {
	GetDailyPrices(ctx context.Context, source, code string, startDate, endDate time.Time) ([]models.EodPrice, error)
}

// SplitReader loads split events for a code
type SplitReader interface {
	GetSplits(ctx context.Context, source, code string) ([]models.Split, error)
}

// AdjustmentService serves split-adjusted price series
type AdjustmentService struct {
	memCache  *cache.MemoryCache
	priceRepo PriceReader
	splitRepo SplitReader
	source    string
}

// NewAdjustmentService creates a new AdjustmentService. memCache may be nil.
func NewAdjustmentService(memCache *cache.MemoryCache, priceRepo PriceReader, splitRepo SplitReader, source string) *AdjustmentService {
	return &AdjustmentService{
		memCache:  memCache,
		priceRepo: priceRepo,
		splitRepo: splitRepo,
		source:    source,
	}
}

// GetAdjustedPrices returns prices for code between startDate and endDate
// expressed in terms of the most recent split.
//
// Prices after endDate are loaded too so that every later split is consumed;
// they are trimmed before returning. A series that still ends before its last
// split is returned best-effort with a warning on ctx.
func (s *AdjustmentService) GetAdjustedPrices(ctx context.Context, code string, startDate, endDate time.Time) ([]models.AdjustedEodPrice, error) {
	defer TrackTime("GetAdjustedPrices", time.Now())

	startDate, endDate = models.DateOf(startDate), models.DateOf(endDate)
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date %s is before start date %s", endDate.Format(models.DateLayout), startDate.Format(models.DateLayout))
	}

	if s.memCache != nil {
		if cached, ok := s.memCache.GetAdjusted(s.source, code, startDate, endDate); ok {
			return cached, nil
		}
	}

	splitEvents, err := s.splitRepo.GetSplits(ctx, s.source, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}

	prices, err := s.priceRepo.GetDailyPrices(ctx, s.source, code, startDate, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to get prices: %w", err)
	}

	adjusted, err := splits.Adjust(prices, splits.CumulativeFactors(splitEvents))
	cacheable := true
	if err != nil {
		var integrity *splits.IntegrityError
		if !errors.As(err, &integrity) {
			return nil, err
		}
		log.WithField("code", code).Warnf("adjusting with incomplete series: %v", err)
		Warnf(ctx, models.WarnUnconsumedSplits, "%v", err)
		cacheable = false
	}

	out := make([]models.AdjustedEodPrice, 0, len(adjusted))
	for _, p := range adjusted {
		if p.DateEod.After(endDate) {
			break
		}
		out = append(out, p)
	}

	if s.memCache != nil && cacheable {
		s.memCache.SetAdjusted(s.source, code, startDate, endDate, out)
	}
	return out, nil
}

// InvalidateCode drops cached series for code, e.g. after new splits are stored.
func (s *AdjustmentService) InvalidateCode(code string) {
	if s.memCache != nil {
		s.memCache.InvalidateCode(s.source, code)
	}
}

// ClearCache drops every cached series.
func (s *AdjustmentService) ClearCache() {
	if s.memCache != nil {
		s.memCache.Clear()
	}
}
