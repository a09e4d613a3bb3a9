package service

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/pkg/export"
)

func TestExportServiceRenderExceptionsCSV(t *testing.T) {
	svc := NewExportService(nil, &export.CSVExporter{}, nil)
	line := 3
	receipt := &models.ImportReceipt{
		SourceFile: "roster.xlsx",
		Exceptions: []models.ImportException{
			{Sheet: "一班", RowIndex: &line, Reason: models.ReasonInvalidPhone, Detail: "12345"},
			{Sheet: "二班", Reason: models.ReasonNoPhoneColumn},
		},
	}

	payload, err := svc.RenderExceptions(receipt, ExportFormatCSV)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"一班", "3", "invalid_phone", "12345"}, records[1])
	assert.Equal(t, []string{"二班", "", "no_phone_column", ""}, records[2])
}

func TestExportServiceRenderYearSummaryPDF(t *testing.T) {
	svc := NewExportService(nil, nil, nil)
	summary := &models.YearSummary{Year: 2024, Enrollments: 7, UniquePeople: 5, RepeatPeople: 2,
		TopLearners: []models.TopLearner{{PhoneKey: "13800000001", Enrollments: 3}}}

	payload, err := svc.RenderYearSummary(summary, ExportFormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, format)
	assert.Equal(t, "application/pdf", format.ContentType())

	_, err = ParseExportFormat("xlsx")
	require.Error(t, err)
	assert.Equal(t, "training_2024.csv", Filename("training 2024", ExportFormatCSV))
}
