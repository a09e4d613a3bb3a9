package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/models"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
)

const statsCachePattern = "stats:year:*"

type statsRepository interface {
	CountEnrollments(ctx context.Context, year int) (int, error)
	CountUniquePeople(ctx context.Context, year int) (int, error)
	CountRepeatPeople(ctx context.Context, year int) (int, error)
	TopLearners(ctx context.Context, year, limit int) ([]models.TopLearner, error)
}

// StatsConfig tunes yearly statistics.
type StatsConfig struct {
	TopLimit int
	CacheTTL time.Duration
}

// StatsService aggregates enrollments per session start year.
type StatsService struct {
	repo    statsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     StatsConfig
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg StatsConfig) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopLimit <= 0 {
		cfg.TopLimit = 5
	}
	return &StatsService{repo: repo, cache: cache, metrics: metrics, logger: logger, cfg: cfg}
}

// YearSummary returns totals for sessions starting in year. The boolean is
// true when the summary came from cache.
func (s *StatsService) YearSummary(ctx context.Context, year, limit int) (*models.YearSummary, bool, error) {
	if year < 1900 || year > 9999 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "year out of range")
	}
	if limit <= 0 {
		limit = s.cfg.TopLimit
	}

	key := fmt.Sprintf("stats:year:%d:%d", year, limit)
	var cached models.YearSummary
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	start := time.Now()
	summary := &models.YearSummary{Year: year}
	var err error
	if summary.Enrollments, err = s.repo.CountEnrollments(ctx, year); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if summary.UniquePeople, err = s.repo.CountUniquePeople(ctx, year); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count people")
	}
	if summary.RepeatPeople, err = s.repo.CountRepeatPeople(ctx, year); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count repeat people")
	}
	if summary.TopLearners, err = s.repo.TopLearners(ctx, year, limit); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank learners")
	}
	if summary.TopLearners == nil {
		summary.TopLearners = []models.TopLearner{}
	}
	summary.GeneratedAt = time.Now().UTC()
	s.metrics.ObserveDBQuery("stats_year_summary", time.Since(start))

	if err := s.cache.Set(ctx, key, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("cache year summary", zap.Int("year", year), zap.Error(err))
	}
	return summary, false, nil
}
