package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/repository"
	"github.com/noah-isme/training-import/internal/schedule"
	"github.com/noah-isme/training-import/internal/service"
	"github.com/noah-isme/training-import/internal/source"
	"github.com/noah-isme/training-import/pkg/cache"
	"github.com/noah-isme/training-import/pkg/config"
	"github.com/noah-isme/training-import/pkg/database"
	"github.com/noah-isme/training-import/pkg/export"
	"github.com/noah-isme/training-import/pkg/phone"
	"github.com/noah-isme/training-import/pkg/storage"
)

// App holds every wired dependency shared by the HTTP server and the CLI.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	Metrics   *service.MetricsService
	Cache     *service.CacheService
	Sessions  *service.SessionService
	Imports   *service.ImportService
	Schedules *service.ScheduleService
	Stats     *service.StatsService
	Exports   *service.ExportService
	Tokens    *service.TokenService
	Uploads   *storage.LocalStorage
}

// New opens the database, applies migrations when configured and wires the
// services. Redis failures degrade to an uncached service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mode, err := phone.ParseMode(cfg.Import.PhoneMode)
	if err != nil {
		return nil, fmt.Errorf("import phone mode: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.MigrateUp(database.URL(cfg.Database)); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied", zap.String("driver", cfg.Database.Driver))
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, stats cache disabled", zap.Error(err))
		redisClient = nil
	}

	uploads, err := storage.NewLocalStorage(cfg.Import.UploadDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare upload dir: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, logger),
		metrics,
		cfg.Stats.CacheTTL,
		logger,
		cfg.Stats.CacheEnabled && redisClient != nil,
	)

	store := repository.NewStore(db)
	sessionRepo := repository.NewSessionRepository(db)
	reader := source.NewReader()

	pdf := export.NewPDFExporter()
	if cfg.Export.PDFFont != "" {
		pdf = export.NewPDFExporterWithFont(cfg.Export.PDFFont)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Redis:    redisClient,
		Metrics:  metrics,
		Cache:    cacheSvc,
		Sessions: service.NewSessionService(sessionRepo, validate, logger),
		Imports: service.NewImportService(
			store,
			sessionRepo,
			reader,
			service.NewIdentityResolver(repository.NewPersonRepository(db), logger),
			repository.NewEnrollmentRepository(db),
			repository.NewImportBatchRepository(db),
			cacheSvc,
			metrics,
			validate,
			logger,
			service.ImportConfig{PhoneMode: mode},
		),
		Schedules: service.NewScheduleService(
			reader,
			schedule.NewExtractor(cfg.Schedule.PlaceholderLabels),
			sessionRepo,
			metrics,
			validate,
			logger,
			cfg.Schedule.Location(),
		),
		Stats: service.NewStatsService(repository.NewStatsRepository(db), cacheSvc, metrics, logger, service.StatsConfig{
			TopLimit: cfg.Stats.TopLimit,
			CacheTTL: cfg.Stats.CacheTTL,
		}),
		Exports: service.NewExportService(logger, export.NewCSVExporter(), pdf),
		Tokens: service.NewTokenService(service.TokenConfig{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
			Expiry: cfg.JWT.Expiration,
		}),
		Uploads: uploads,
	}
	return a, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
