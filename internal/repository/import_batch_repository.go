package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/training-import/internal/models"
)

// ImportBatchRepository records committed imports.
type ImportBatchRepository struct {
	db *sqlx.DB
}

// NewImportBatchRepository constructs the repository.
func NewImportBatchRepository(db *sqlx.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

// Insert persists a batch line.
func (r *ImportBatchRepository) Insert(ctx context.Context, batch *models.ImportBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	q := conn(ctx, r.db)
	const query = `INSERT INTO import_batches (id, session_id, source_file, fingerprint, rows_seen, rows_imported, new_person_count, new_enrollment_count, exception_count, created_at)
        VALUES (:id, :session_id, :source_file, :fingerprint, :rows_seen, :rows_imported, :new_person_count, :new_enrollment_count, :exception_count, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, batch); err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}
	return nil
}

// ExistsFingerprint reports whether the same content was imported into the session before.
func (r *ImportBatchRepository) ExistsFingerprint(ctx context.Context, sessionID, fingerprint string) (bool, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT 1 FROM import_batches WHERE session_id = ? AND fingerprint = ? LIMIT 1`)
	var exists int
	if err := sqlx.GetContext(ctx, q, &exists, query, sessionID, fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check import fingerprint: %w", err)
	}
	return true, nil
}

// ListBySession returns batches for a session newest first.
func (r *ImportBatchRepository) ListBySession(ctx context.Context, sessionID string) ([]models.ImportBatch, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT id, session_id, source_file, fingerprint, rows_seen, rows_imported, new_person_count, new_enrollment_count, exception_count, created_at
        FROM import_batches WHERE session_id = ? ORDER BY created_at DESC`)
	var batches []models.ImportBatch
	if err := sqlx.SelectContext(ctx, q, &batches, query, sessionID); err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	return batches, nil
}
