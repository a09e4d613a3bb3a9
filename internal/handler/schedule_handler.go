package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/dto"
	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/service"
	"github.com/noah-isme/training-import/pkg/response"
)

type scheduleService interface {
	Extract(ctx context.Context, req service.ExtractRequest) ([]models.ScheduleEntry, error)
}

// ScheduleHandler extracts schedules from uploaded documents.
type ScheduleHandler struct {
	schedules scheduleService
	uploads   uploadStore
	maxSize   int64
	logger    *zap.Logger
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules scheduleService, uploads uploadStore, maxSize int64, logger *zap.Logger) *ScheduleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleHandler{schedules: schedules, uploads: uploads, maxSize: maxSize, logger: logger}
}

// Extract godoc
// @Summary Extract a schedule from a docx document
// @Tags Schedules
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "docx document"
// @Param default_year formData int false "Year for dates without one"
// @Param location formData string false "Location copied onto every entry"
// @Param session_id formData string false "Session copied onto every entry"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /schedules/extract [post]
func (h *ScheduleHandler) Extract(c *gin.Context) {
	limitBody(c, h.maxSize)

	var form dto.ScheduleForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, formError(err))
		return
	}
	stored, original, err := receiveUpload(c, h.uploads, "file", h.maxSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer func() {
		if err := h.uploads.Delete(stored); err != nil {
			h.logger.Warn("remove upload", zap.String("file", stored), zap.Error(err))
		}
	}()

	entries, err := h.schedules.Extract(c.Request.Context(), service.ExtractRequest{
		Path:        h.uploads.Path(stored),
		DefaultYear: form.DefaultYear,
		Location:    form.Location,
		SessionID:   form.SessionID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Debug("schedule document processed", zap.String("file", original), zap.Int("entries", len(entries)))
	response.JSON(c, http.StatusOK, dto.ScheduleResponse{Count: len(entries), Entries: entries}, nil)
}
