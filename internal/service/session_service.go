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
	appErrors "github.com/noah-isme/training-import/pkg/errors"
)

const dateLayout = "2006-01-02"

type sessionRepository interface {
	Create(ctx context.Context, session *models.TrainingSession) error
	FindByID(ctx context.Context, id string) (*models.TrainingSession, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.TrainingSession, int, error)
}

// CreateSessionRequest describes a training session creation payload.
type CreateSessionRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Location  string `json:"location" validate:"omitempty,max=200"`
}

// SessionService manages training sessions. Imports never create sessions.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs SessionService.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// Create validates and stores a new session.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.TrainingSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	start, _ := time.Parse(dateLayout, req.StartDate)
	session := &models.TrainingSession{Title: strings.TrimSpace(req.Title), StartDate: start}
	if req.EndDate != "" {
		end, _ := time.Parse(dateLayout, req.EndDate)
		if end.Before(start) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
		}
		session.EndDate = &end
	}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		session.Location = &loc
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.logger.Info("training session created", zap.String("session_id", session.ID), zap.String("title", session.Title))
	return session, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id string) (*models.TrainingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "training session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// List returns sessions with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.TrainingSession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
