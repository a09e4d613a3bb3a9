package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/mapping"
	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/source"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
	"github.com/noah-isme/training-import/pkg/phone"
)

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sessionFinder interface {
	FindByID(ctx context.Context, id string) (*models.TrainingSession, error)
}

type sheetReader interface {
	ReadSheets(path string) ([]source.Sheet, error)
}

type personResolver interface {
	ResolveOrCreate(ctx context.Context, phoneKey string, name, org *string) (string, bool, error)
}

type enrollmentRepository interface {
	Insert(ctx context.Context, enrollment *models.Enrollment) error
}

type importBatchRepository interface {
	Insert(ctx context.Context, batch *models.ImportBatch) error
	ExistsFingerprint(ctx context.Context, sessionID, fingerprint string) (bool, error)
}

// ImportRequest describes one roster import call.
type ImportRequest struct {
	Path       string `validate:"required"`
	SessionID  string `validate:"required"`
	PhoneMode  string `validate:"omitempty,oneof=strict lenient"`
	SourceName string
}

// ImportConfig tunes the importer.
type ImportConfig struct {
	PhoneMode phone.Mode
}

// ImportService loads roster files into enrollments of a training session.
type ImportService struct {
	tx          transactor
	sessions    sessionFinder
	reader      sheetReader
	resolver    personResolver
	enrollments enrollmentRepository
	batches     importBatchRepository
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ImportConfig
	fingerprint func(path string) (string, error)
}

// NewImportService constructs an ImportService.
func NewImportService(tx transactor, sessions sessionFinder, reader sheetReader, resolver personResolver, enrollments enrollmentRepository, batches importBatchRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ImportConfig) *ImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PhoneMode == "" {
		cfg.PhoneMode = phone.ModeStrict
	}
	return &ImportService{
		tx:          tx,
		sessions:    sessions,
		reader:      reader,
		resolver:    resolver,
		enrollments: enrollments,
		batches:     batches,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		fingerprint: source.Fingerprint,
	}
}

// Import reads every sheet of the file at req.Path and records one enrollment
// per row with a valid phone. All writes of the call commit together or not at
// all. Row and table problems are reported on the receipt.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*models.ImportReceipt, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid import request")
	}
	mode := s.cfg.PhoneMode
	if req.PhoneMode != "" {
		parsed, err := phone.ParseMode(req.PhoneMode)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid phone mode")
		}
		mode = parsed
	}

	session, err := s.sessions.FindByID(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load training session")
	}

	start := time.Now()
	sheets, err := s.reader.ReadSheets(req.Path)
	if err != nil {
		return nil, sourceError(err)
	}
	fingerprint, err := s.fingerprint(req.Path)
	if err != nil {
		return nil, sourceError(err)
	}

	sourceName := req.SourceName
	if sourceName == "" {
		sourceName = filepath.Base(req.Path)
	}
	receipt := &models.ImportReceipt{
		SessionID:   session.ID,
		SourceFile:  sourceName,
		Fingerprint: fingerprint,
		Exceptions:  []models.ImportException{},
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		seen, err := s.batches.ExistsFingerprint(ctx, session.ID, fingerprint)
		if err != nil {
			return err
		}
		if seen {
			receipt.PreviouslyImported = true
			s.logger.Warn("source already imported into session",
				zap.String("session_id", session.ID),
				zap.String("source", sourceName),
				zap.String("fingerprint", fingerprint))
		}
		for _, sheet := range sheets {
			if err := s.importSheet(ctx, session.ID, sourceName, sheet, mode, receipt); err != nil {
				return err
			}
		}
		return s.batches.Insert(ctx, &models.ImportBatch{
			SessionID:          session.ID,
			SourceFile:         sourceName,
			Fingerprint:        fingerprint,
			RowsSeen:           receipt.RowsSeen,
			RowsImported:       receipt.RowsImported,
			NewPersonCount:     receipt.NewPersonCount,
			NewEnrollmentCount: receipt.NewEnrollmentCount,
			ExceptionCount:     len(receipt.Exceptions),
		})
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "import cancelled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import enrollments")
	}

	if err := s.cache.Invalidate(ctx, statsCachePattern); err != nil {
		s.logger.Warn("invalidate stats cache", zap.Error(err))
	}
	s.metrics.RecordImport(receipt, time.Since(start))
	s.logger.Info("roster imported",
		zap.String("session_id", session.ID),
		zap.String("source", sourceName),
		zap.Int("rows_seen", receipt.RowsSeen),
		zap.Int("rows_imported", receipt.RowsImported),
		zap.Int("new_persons", receipt.NewPersonCount),
		zap.Int("exceptions", len(receipt.Exceptions)))
	return receipt, nil
}

func (s *ImportService) importSheet(ctx context.Context, sessionID, sourceName string, sheet source.Sheet, mode phone.Mode, receipt *models.ImportReceipt) error {
	if sheet.Empty() {
		return nil
	}
	columns := mapping.Map(sheet.Headers, mapping.EnrollmentFields...)
	if !columns.Has(mapping.FieldPhone) {
		receipt.Exceptions = append(receipt.Exceptions, models.ImportException{
			Sheet:  sheet.Name,
			Reason: models.ReasonNoPhoneColumn,
			Detail: "no header matches a phone column",
		})
		return nil
	}

	for _, record := range sheet.Records {
		if record.Blank() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		receipt.RowsSeen++

		row := columns.Project(record.Cells)
		raw := row.Get(mapping.FieldPhone)
		key, ok := phone.Normalize(raw, mode)
		if !ok {
			line := record.Line
			receipt.Exceptions = append(receipt.Exceptions, models.ImportException{
				Sheet:    sheet.Name,
				RowIndex: &line,
				Reason:   models.ReasonInvalidPhone,
				Detail:   raw,
			})
			continue
		}

		personID, created, err := s.resolver.ResolveOrCreate(ctx, key, row.Optional(mapping.FieldName), row.Optional(mapping.FieldOrg))
		if err != nil {
			return fmt.Errorf("resolve person on sheet %q line %d: %w", sheet.Name, record.Line, err)
		}
		if created {
			receipt.NewPersonCount++
		}

		enrollment := &models.Enrollment{
			SessionID:      sessionID,
			PersonID:       personID,
			NameSnapshot:   row.Optional(mapping.FieldName),
			OrgText:        row.Optional(mapping.FieldOrg),
			RegionText:     row.Optional(mapping.FieldRegion),
			RoleTitle:      row.Optional(mapping.FieldRoleTitle),
			RemoteID:       row.Optional(mapping.FieldRemoteID),
			RoomPreference: row.Optional(mapping.FieldRoom),
			SourceFile:     sourceName,
			SourceSheet:    sheet.Name,
		}
		if err := s.enrollments.Insert(ctx, enrollment); err != nil {
			return fmt.Errorf("insert enrollment on sheet %q line %d: %w", sheet.Name, record.Line, err)
		}
		receipt.NewEnrollmentCount++
		receipt.RowsImported++
	}
	return nil
}

func sourceError(err error) error {
	if errors.Is(err, source.ErrUnsupported) {
		return appErrors.Wrap(err, appErrors.ErrUnsupportedSource.Code, appErrors.ErrUnsupportedSource.Status, appErrors.ErrUnsupportedSource.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrUnreadableSource.Code, appErrors.ErrUnreadableSource.Status, appErrors.ErrUnreadableSource.Message)
}
