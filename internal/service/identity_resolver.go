package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/repository"
)

type personRepository interface {
	FindByPhoneKey(ctx context.Context, phoneKey string) (*models.Person, error)
	Insert(ctx context.Context, person *models.Person) error
	UpdateLatest(ctx context.Context, id string, name, org *string) error
}

// IdentityResolver maps a normalized phone key to exactly one person.
type IdentityResolver struct {
	repo   personRepository
	logger *zap.Logger
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(repo personRepository, logger *zap.Logger) *IdentityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityResolver{repo: repo, logger: logger}
}

// ResolveOrCreate returns the id of the person owning phoneKey, creating it
// when missing. For an existing person, non-blank name and org overwrite the
// stored latest values; blank or nil values never erase them. A concurrent
// insert of the same key is resolved by looking the person up again.
func (r *IdentityResolver) ResolveOrCreate(ctx context.Context, phoneKey string, name, org *string) (string, bool, error) {
	if phoneKey == "" {
		return "", false, errors.New("resolve person: empty phone key")
	}
	name, org = nonBlank(name), nonBlank(org)

	person, err := r.repo.FindByPhoneKey(ctx, phoneKey)
	switch {
	case err == nil:
		return person.ID, false, r.refresh(ctx, person.ID, name, org)
	case !errors.Is(err, sql.ErrNoRows):
		return "", false, err
	}

	person = &models.Person{PhoneKey: phoneKey, LatestName: name, LatestOrg: org}
	err = r.repo.Insert(ctx, person)
	if err == nil {
		return person.ID, true, nil
	}
	if !errors.Is(err, repository.ErrDuplicatePhoneKey) {
		return "", false, err
	}

	r.logger.Debug("phone key inserted concurrently, retrying lookup", zap.String("phone_key", phoneKey))
	person, err = r.repo.FindByPhoneKey(ctx, phoneKey)
	if err != nil {
		return "", false, fmt.Errorf("lookup person after duplicate insert: %w", err)
	}
	return person.ID, false, r.refresh(ctx, person.ID, name, org)
}

func (r *IdentityResolver) refresh(ctx context.Context, id string, name, org *string) error {
	if name == nil && org == nil {
		return nil
	}
	return r.repo.UpdateLatest(ctx, id, name, org)
}

func nonBlank(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
