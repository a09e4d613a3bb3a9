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

// SessionRepository persists training sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a session.
func (r *SessionRepository) Create(ctx context.Context, session *models.TrainingSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	q := conn(ctx, r.db)
	const query = `INSERT INTO training_sessions (id, title, start_date, end_date, location, created_at)
        VALUES (:id, :title, :start_date, :end_date, :location, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, q, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID returns a session or sql.ErrNoRows.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.TrainingSession, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT id, title, start_date, end_date, location, created_at FROM training_sessions WHERE id = ?`)
	var session models.TrainingSession
	if err := sqlx.GetContext(ctx, q, &session, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}

// List returns sessions newest first, optionally limited to a start year.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.TrainingSession, int, error) {
	q := conn(ctx, r.db)
	clause := ""
	var args []interface{}
	if filter.Year > 0 {
		from, to := yearBounds(filter.Year)
		clause = " WHERE start_date >= ? AND start_date < ?"
		args = append(args, from, to)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := q.Rebind(fmt.Sprintf(`SELECT id, title, start_date, end_date, location, created_at FROM training_sessions%s
        ORDER BY start_date DESC, created_at DESC LIMIT %d OFFSET %d`, clause, size, offset))
	var sessions []models.TrainingSession
	if err := sqlx.SelectContext(ctx, q, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, q, &total, q.Rebind("SELECT COUNT(*) FROM training_sessions"+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

func yearBounds(year int) (string, string) {
	return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1)
}
