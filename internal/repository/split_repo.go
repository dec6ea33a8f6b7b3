package repository

import (
	"context"
	"fmt"

	"github.com/epeers/refsync/internal/models"
	"github.com/jackc/pgx/v5"
)

// SplitRepository handles database operations for split events
type SplitRepository struct {
	db DBTX
}

// NewSplitRepository creates a new SplitRepository
func NewSplitRepository(db DBTX) *SplitRepository {
	return &SplitRepository{db: db}
}

// StoreSplits upserts split events keyed by (source, code, split_date)
func (r *SplitRepository) StoreSplits(ctx context.Context, splits []models.Split) error {
	if len(splits) == 0 {
		return nil
	}

	query := `
		INSERT INTO splits (source, code, split_date, ratio_before, ratio_after)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, code, split_date) DO UPDATE
		SET ratio_before = EXCLUDED.ratio_before, ratio_after = EXCLUDED.ratio_after
	`

	batch := &pgx.Batch{}
	for _, s := range splits {
		batch.Queue(query, s.Source, s.Code, s.SplitDate, s.Before, s.After)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range splits {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to store split: %w", err)
		}
	}
	return nil
}

// GetSplits returns every split for a code, oldest first
func (r *SplitRepository) GetSplits(ctx context.Context, source, code string) ([]models.Split, error) {
	query := `
		SELECT source, code, split_date, ratio_before, ratio_after
		FROM splits
		WHERE source = $1 AND code = $2
		ORDER BY split_date ASC
	`
	rows, err := r.db.Query(ctx, query, source, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var s models.Split
		if err := rows.Scan(&s.Source, &s.Code, &s.SplitDate, &s.Before, &s.After); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}
