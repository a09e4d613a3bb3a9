package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/training-import/internal/models"
)

// StatsRepository aggregates enrollments per session start year.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

const yearJoin = `FROM enrollments e
JOIN training_sessions s ON s.id = e.session_id
WHERE s.start_date >= ? AND s.start_date < ?`

// CountEnrollments counts enrollments of sessions starting in year.
func (r *StatsRepository) CountEnrollments(ctx context.Context, year int) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) "+yearJoin, year, "count enrollments")
}

// CountUniquePeople counts distinct people enrolled in year.
func (r *StatsRepository) CountUniquePeople(ctx context.Context, year int) (int, error) {
	return r.count(ctx, "SELECT COUNT(DISTINCT e.person_id) "+yearJoin, year, "count unique people")
}

// CountRepeatPeople counts people with two or more enrollments in year.
func (r *StatsRepository) CountRepeatPeople(ctx context.Context, year int) (int, error) {
	query := "SELECT COUNT(*) FROM (SELECT e.person_id " + yearJoin + " GROUP BY e.person_id HAVING COUNT(*) >= 2) repeaters"
	return r.count(ctx, query, year, "count repeat people")
}

// TopLearners ranks people by enrollments in year.
func (r *StatsRepository) TopLearners(ctx context.Context, year, limit int) ([]models.TopLearner, error) {
	if limit <= 0 {
		limit = 5
	}
	from, to := yearBounds(year)
	query := r.db.Rebind(`SELECT p.id AS person_id, p.phone_key, p.latest_name, COUNT(*) AS enrollments
FROM enrollments e
JOIN persons p ON p.id = e.person_id
JOIN training_sessions s ON s.id = e.session_id
WHERE s.start_date >= ? AND s.start_date < ?
GROUP BY p.id, p.phone_key, p.latest_name
ORDER BY enrollments DESC, p.phone_key ASC
LIMIT ?`)
	var learners []models.TopLearner
	if err := r.db.SelectContext(ctx, &learners, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("top learners: %w", err)
	}
	return learners, nil
}

func (r *StatsRepository) count(ctx context.Context, query string, year int, op string) (int, error) {
	from, to := yearBounds(year)
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(query), from, to); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}
