package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/refsync/internal/models"
	"github.com/jackc/pgx/v5"
)

// PriceRepository handles database operations for end-of-day prices
type PriceRepository struct {
	db DBTX
}

// NewPriceRepository creates a new PriceRepository
func NewPriceRepository(db DBTX) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetDailyPrices retrieves raw prices for a code within a date range, oldest first.
// A zero endDate means no upper bound.
func (r *PriceRepository) GetDailyPrices(ctx context.Context, source, code string, startDate, endDate time.Time) ([]models.EodPrice, error) {
	query := `
		SELECT source, code, date_eod, open, high, low, close, volume
		FROM eod_prices
		WHERE source = $1 AND code = $2 AND date_eod >= $3
		  AND ($4::date IS NULL OR date_eod <= $4)
		ORDER BY date_eod ASC
	`
	var end *time.Time
	if !endDate.IsZero() {
		end = &endDate
	}

	rows, err := r.db.Query(ctx, query, source, code, startDate, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []models.EodPrice
	for rows.Next() {
		var p models.EodPrice
		if err := rows.Scan(&p.Source, &p.Code, &p.DateEod, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan price data: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// StoreDailyPrices upserts raw prices
func (r *PriceRepository) StoreDailyPrices(ctx context.Context, prices []models.EodPrice) error {
	if len(prices) == 0 {
		return nil
	}

	query := `
		INSERT INTO eod_prices (source, code, date_eod, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source, code, date_eod) DO UPDATE
		SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
		    close = EXCLUDED.close, volume = EXCLUDED.volume
	`

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, p.Source, p.Code, p.DateEod, p.Open, p.High, p.Low, p.Close, p.Volume)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range prices {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to store price: %w", err)
		}
	}
	return nil
}
