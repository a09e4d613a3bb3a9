package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/training-import/internal/dto"
	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/service"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
	"github.com/noah-isme/training-import/pkg/response"
)

type statsService interface {
	YearSummary(ctx context.Context, year, limit int) (*models.YearSummary, bool, error)
}

type summaryRenderer interface {
	RenderYearSummary(summary *models.YearSummary, format service.ExportFormat) ([]byte, error)
}

// StatsHandler exposes yearly enrollment statistics.
type StatsHandler struct {
	stats   statsService
	exports summaryRenderer
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats statsService, exports summaryRenderer) *StatsHandler {
	return &StatsHandler{stats: stats, exports: exports}
}

// Year godoc
// @Summary Yearly enrollment summary
// @Tags Stats
// @Produce json
// @Param year path int true "Session start year"
// @Param limit query int false "Top learner count"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /stats/years/{year} [get]
func (h *StatsHandler) Year(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be numeric"))
		return
	}
	var query dto.StatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	summary, cached, err := h.stats.YearSummary(c.Request.Context(), year, query.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if query.Rendered() {
		format := service.ExportFormat(query.Format)
		payload, err := h.exports.RenderYearSummary(summary, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, service.Filename(fmt.Sprintf("training_summary_%d", year), format), format.ContentType(), payload)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cache_hit": cached})
}
