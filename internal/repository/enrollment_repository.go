package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/training-import/internal/models"
)

// EnrollmentRepository handles persistence of enrollment snapshots.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Insert persists a new enrollment record. Snapshots are never updated.
func (r *EnrollmentRepository) Insert(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	q := conn(ctx, r.db)
	query := `INSERT INTO enrollments (id, session_id, person_id, enrolled_at, name_snapshot, org_text, region_text, role_title, remote_id, room_preference, source_file, source_sheet)
        VALUES (:id, :session_id, :person_id, :enrolled_at, :name_snapshot, :org_text, :region_text, :role_title, :remote_id, :room_preference, :source_file, :source_sheet)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// ListBySession returns enrollments for a session in insertion time order.
func (r *EnrollmentRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Enrollment, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT id, session_id, person_id, enrolled_at, name_snapshot, org_text, region_text, role_title, remote_id, room_preference, source_file, source_sheet
        FROM enrollments WHERE session_id = ? ORDER BY enrolled_at, id`)
	var enrollments []models.Enrollment
	if err := sqlx.SelectContext(ctx, q, &enrollments, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session enrollments: %w", err)
	}
	return enrollments, nil
}
