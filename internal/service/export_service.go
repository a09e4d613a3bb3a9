package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/pkg/export"
	appErrors "github.com/noah-isme/training-import/pkg/errors"
)

// ExportFormat names a rendered output format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// ParseExportFormat maps user input to a format.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders import receipts and yearly statistics.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// RenderExceptions renders the exception list of a receipt.
func (s *ExportService) RenderExceptions(receipt *models.ImportReceipt, format ExportFormat) ([]byte, error) {
	if receipt == nil {
		return nil, fmt.Errorf("receipt nil")
	}
	headers := []string{"Sheet", "Row", "Reason", "Detail"}
	rows := make([]map[string]string, 0, len(receipt.Exceptions))
	for _, exc := range receipt.Exceptions {
		row := ""
		if exc.RowIndex != nil {
			row = strconv.Itoa(*exc.RowIndex)
		}
		rows = append(rows, map[string]string{
			"Sheet":  exc.Sheet,
			"Row":    row,
			"Reason": string(exc.Reason),
			"Detail": exc.Detail,
		})
	}
	title := fmt.Sprintf("Import exceptions %s", receipt.SourceFile)
	return s.render(export.Dataset{Headers: headers, Rows: rows}, title, format)
}

// RenderYearSummary renders totals followed by the top learner ranking.
func (s *ExportService) RenderYearSummary(summary *models.YearSummary, format ExportFormat) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("summary nil")
	}
	headers := []string{"Metric", "Phone", "Name", "Value"}
	rows := []map[string]string{
		{"Metric": "Enrollments", "Value": strconv.Itoa(summary.Enrollments)},
		{"Metric": "Unique people", "Value": strconv.Itoa(summary.UniquePeople)},
		{"Metric": "Repeat people", "Value": strconv.Itoa(summary.RepeatPeople)},
	}
	for i, learner := range summary.TopLearners {
		rows = append(rows, map[string]string{
			"Metric": fmt.Sprintf("Top %d", i+1),
			"Phone":  learner.PhoneKey,
			"Name":   deref(learner.LatestName),
			"Value":  strconv.Itoa(learner.Enrollments),
		})
	}
	title := fmt.Sprintf("Training summary %d", summary.Year)
	return s.render(export.Dataset{Headers: headers, Rows: rows}, title, format)
}

// Filename builds a download name for the rendered payload.
func Filename(prefix string, format ExportFormat) string {
	return fmt.Sprintf("%s.%s", sanitizeFilename(prefix), format)
}

func (s *ExportService) render(data export.Dataset, title string, format ExportFormat) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(data)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(data, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("render export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return payload, nil
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
