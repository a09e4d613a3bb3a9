package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/schedule"
	"github.com/noah-isme/training-import/internal/source"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
)

type tableReader interface {
	ReadTables(path string) ([]source.Table, error)
}

type scheduleExtractor interface {
	Extract(tables []source.Table, opts schedule.Options) []models.ScheduleEntry
}

// ExtractRequest describes one schedule extraction call.
type ExtractRequest struct {
	Path        string `validate:"required"`
	DefaultYear int    `validate:"omitempty,min=1900,max=9999"`
	Location    string
	SessionID   string
}

// ScheduleService turns document tables into schedule entries.
type ScheduleService struct {
	reader    tableReader
	extractor scheduleExtractor
	sessions  sessionFinder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	tz        *time.Location
	now       func() time.Time
}

// NewScheduleService constructs a ScheduleService. Timestamps are built in tz,
// UTC when nil.
func NewScheduleService(reader tableReader, extractor scheduleExtractor, sessions sessionFinder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, tz *time.Location) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tz == nil {
		tz = time.UTC
	}
	return &ScheduleService{reader: reader, extractor: extractor, sessions: sessions, metrics: metrics, validator: validate, logger: logger, tz: tz, now: time.Now}
}

// Extract reads the document at req.Path. When no default year is given the
// session's start year is used, else the current year. The session, when
// given, must exist; its id is copied onto every entry.
func (s *ScheduleService) Extract(ctx context.Context, req ExtractRequest) ([]models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid extract request")
	}

	opts := schedule.Options{DefaultYear: req.DefaultYear, TZ: s.tz}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		opts.Location = &loc
	}
	if req.SessionID != "" {
		session, err := s.sessions.FindByID(ctx, req.SessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training session")
		}
		opts.SessionID = &session.ID
		if opts.DefaultYear == 0 {
			opts.DefaultYear = session.StartDate.Year()
		}
	}
	if opts.DefaultYear == 0 {
		opts.DefaultYear = s.now().In(s.tz).Year()
	}

	start := time.Now()
	tables, err := s.reader.ReadTables(req.Path)
	if err != nil {
		return nil, sourceError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "extraction cancelled")
	}
	entries := s.extractor.Extract(tables, opts)
	s.metrics.RecordScheduleExtraction(len(entries), time.Since(start))
	s.logger.Info("schedule extracted",
		zap.String("path", req.Path),
		zap.Int("tables", len(tables)),
		zap.Int("entries", len(entries)))
	return entries, nil
}
