package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/dto"
	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/service"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
	"github.com/noah-isme/training-import/pkg/response"
)

type rosterImporter interface {
	Import(ctx context.Context, req service.ImportRequest) (*models.ImportReceipt, error)
}

type exceptionRenderer interface {
	RenderExceptions(receipt *models.ImportReceipt, format service.ExportFormat) ([]byte, error)
}

// ImportHandler accepts roster uploads for a training session.
type ImportHandler struct {
	imports rosterImporter
	exports exceptionRenderer
	uploads uploadStore
	maxSize int64
	logger  *zap.Logger
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports rosterImporter, exports exceptionRenderer, uploads uploadStore, maxSize int64, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{imports: imports, exports: exports, uploads: uploads, maxSize: maxSize, logger: logger}
}

// Create godoc
// @Summary Import a roster into a session
// @Description Accepts an xlsx or csv roster. Rows with invalid phones are reported, not fatal. With format=csv|pdf the exception list is returned as a file.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Roster file"
// @Param phone_mode formData string false "strict or lenient"
// @Param format query string false "json, csv or pdf"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /sessions/{id}/imports [post]
func (h *ImportHandler) Create(c *gin.Context) {
	limitBody(c, h.maxSize)

	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	var form dto.ImportForm
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

	h.logger.Info("roster upload received",
		zap.String("session_id", c.Param("id")),
		zap.String("file", original),
		zap.String("operator", operatorFromContext(c)))

	receipt, err := h.imports.Import(c.Request.Context(), service.ImportRequest{
		Path:       h.uploads.Path(stored),
		SessionID:  c.Param("id"),
		PhoneMode:  form.PhoneMode,
		SourceName: original,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if query.Rendered() {
		format := service.ExportFormat(query.Format)
		payload, err := h.exports.RenderExceptions(receipt, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		name := strings.TrimSuffix(original, filepath.Ext(original))
		response.File(c, service.Filename(name+"_exceptions", format), format.ContentType(), payload)
		return
	}
	response.Created(c, dto.NewImportResponse(receipt))
}
