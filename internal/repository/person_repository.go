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

// PersonRepository persists identity records.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs the repository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// FindByPhoneKey returns the person owning phoneKey or sql.ErrNoRows.
func (r *PersonRepository) FindByPhoneKey(ctx context.Context, phoneKey string) (*models.Person, error) {
	q := conn(ctx, r.db)
	query := q.Rebind(`SELECT id, phone_key, latest_name, latest_org, created_at, updated_at FROM persons WHERE phone_key = ?`)
	var person models.Person
	if err := sqlx.GetContext(ctx, q, &person, query, phoneKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find person by phone: %w", err)
	}
	return &person, nil
}

// Insert creates a person. A concurrent insert of the same phone key yields
// ErrDuplicatePhoneKey and leaves the surrounding transaction usable.
func (r *PersonRepository) Insert(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = person.CreatedAt

	q := conn(ctx, r.db)
	query := q.Rebind(`INSERT INTO persons (id, phone_key, latest_name, latest_org, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`)
	return savepoint(ctx, "person_insert", func() error {
		if _, err := q.ExecContext(ctx, query, person.ID, person.PhoneKey, person.LatestName, person.LatestOrg, person.CreatedAt, person.UpdatedAt); err != nil {
			if IsUniqueViolation(err) {
				return ErrDuplicatePhoneKey
			}
			return fmt.Errorf("insert person: %w", err)
		}
		return nil
	})
}

// UpdateLatest overwrites latest_name and latest_org only with non-nil values.
func (r *PersonRepository) UpdateLatest(ctx context.Context, id string, name, org *string) error {
	q := conn(ctx, r.db)
	query := q.Rebind(`UPDATE persons SET latest_name = COALESCE(?, latest_name), latest_org = COALESCE(?, latest_org), updated_at = ? WHERE id = ?`)
	if _, err := q.ExecContext(ctx, query, name, org, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update person latest: %w", err)
	}
	return nil
}
