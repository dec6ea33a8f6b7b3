package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/epeers/refsync/internal/models"
	"github.com/jackc/pgx/v5"
)

// RemoteFileRepository is the ledger of objects already copied from a remote store
type RemoteFileRepository struct {
	db DBTX
}

// NewRemoteFileRepository creates a new RemoteFileRepository
func NewRemoteFileRepository(db DBTX) *RemoteFileRepository {
	return &RemoteFileRepository{db: db}
}

const remoteFileColumns = `source, provider, hash_code, location, source_name, local_name, size, update_date, process_id`

func scanRemoteFile(row pgx.Row) (models.RemoteFile, error) {
	var f models.RemoteFile
	err := row.Scan(&f.Source, &f.Provider, &f.HashCode, &f.Location, &f.SourceName,
		&f.LocalName, &f.Size, &f.UpdateDate, &f.ProcessID)
	return f, err
}

// ListRemoteFiles returns every ledger row for a source and provider
func (r *RemoteFileRepository) ListRemoteFiles(ctx context.Context, source, provider string) ([]models.RemoteFile, error) {
	query := `SELECT ` + remoteFileColumns + `
		FROM remote_files
		WHERE source = $1 AND provider = $2
		ORDER BY source_name
	`
	rows, err := r.db.Query(ctx, query, source, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to query remote files: %w", err)
	}
	defer rows.Close()

	var files []models.RemoteFile
	for rows.Next() {
		f, err := scanRemoteFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan remote file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetRemoteFile returns one ledger row or ErrNotFound
func (r *RemoteFileRepository) GetRemoteFile(ctx context.Context, source, sourceName string) (*models.RemoteFile, error) {
	query := `SELECT ` + remoteFileColumns + `
		FROM remote_files
		WHERE source = $1 AND source_name = $2
	`
	f, err := scanRemoteFile(r.db.QueryRow(ctx, query, source, sourceName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get remote file: %w", err)
	}
	return &f, nil
}

// UpsertRemoteFile inserts or replaces the row keyed by (source, source_name)
func (r *RemoteFileRepository) UpsertRemoteFile(ctx context.Context, f models.RemoteFile) error {
	query := `
		INSERT INTO remote_files (` + remoteFileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source, source_name) DO UPDATE
		SET provider = EXCLUDED.provider, hash_code = EXCLUDED.hash_code,
		    location = EXCLUDED.location, local_name = EXCLUDED.local_name,
		    size = EXCLUDED.size, update_date = EXCLUDED.update_date,
		    process_id = EXCLUDED.process_id
	`
	_, err := r.db.Exec(ctx, query, f.Source, f.Provider, models.NormalizeETag(f.HashCode), f.Location,
		f.SourceName, f.LocalName, f.Size, f.UpdateDate, f.ProcessID)
	if err != nil {
		return fmt.Errorf("failed to upsert remote file %s: %w", f.SourceName, err)
	}
	return nil
}

// DeleteRemoteFilesForSource removes every ledger row for a source
func (r *RemoteFileRepository) DeleteRemoteFilesForSource(ctx context.Context, source string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM remote_files WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("failed to delete remote files: %w", err)
	}
	return tag.RowsAffected(), nil
}
