package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-import/internal/models"
)

func TestMetricsServiceRecordsImports(t *testing.T) {
	metrics := NewMetricsService()
	line := 3
	metrics.RecordImport(&models.ImportReceipt{
		RowsImported: 3,
		Exceptions: []models.ImportException{
			{RowIndex: &line, Reason: models.ReasonInvalidPhone},
			{Reason: models.ReasonNoPhoneColumn},
		},
	}, 20*time.Millisecond)
	metrics.RecordScheduleExtraction(4, time.Millisecond)
	metrics.RecordCacheOperation(true, time.Millisecond)
	metrics.RecordCacheOperation(false, time.Millisecond)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.ImportsTotal)
	assert.Equal(t, uint64(3), snapshot.RowsImportedTotal)
	assert.Equal(t, uint64(4), snapshot.ScheduleEntriesTotal)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.001)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `import_rows_total{outcome="imported"} 3`)
	assert.Contains(t, body, `import_rows_total{outcome="rejected"} 1`)
	assert.Contains(t, body, `import_exceptions_total{reason="no_phone_column"} 1`)
	assert.Contains(t, body, "schedule_entries_total 4")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var metrics *MetricsService
	metrics.RecordImport(&models.ImportReceipt{}, time.Second)
	metrics.RecordScheduleExtraction(1, time.Second)
	assert.Equal(t, models.SystemMetrics{}, metrics.Snapshot())
}
