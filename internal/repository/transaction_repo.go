package repository

import (
	"context"
	"fmt"

	"github.com/epeers/refsync/internal/models"
)

// TransactionRepository stores raw provider responses
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// InsertTransaction records one provider call and returns its id
func (r *TransactionRepository) InsertTransaction(ctx context.Context, tx models.ApiTransaction) (int64, error) {
	query := `
		INSERT INTO api_transactions (source, category, sub_category, uri, response, status_code, process_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(ctx, query, tx.Source, tx.Category, tx.SubCategory, tx.URI,
		tx.Response, tx.StatusCode, tx.ProcessID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert api transaction: %w", err)
	}
	return id, nil
}

// CountTransactions returns the number of rows for a source and category
func (r *TransactionRepository) CountTransactions(ctx context.Context, source, category string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM api_transactions WHERE source = $1 AND category = $2`,
		source, category).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count api transactions: %w", err)
	}
	return n, nil
}

// DeleteTransactionsForSource removes every transaction for a source
func (r *TransactionRepository) DeleteTransactionsForSource(ctx context.Context, source string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM api_transactions WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete api transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}
