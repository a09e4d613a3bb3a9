package dto

import "github.com/noah-isme/training-import/internal/models"

// ImportForm carries the non-file fields of a roster upload.
type ImportForm struct {
	PhoneMode string `form:"phone_mode" binding:"omitempty,oneof=strict lenient"`
}

// ExportQuery selects a rendered download instead of JSON.
type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=json csv pdf"`
}

// Rendered reports whether a file download was requested.
func (q ExportQuery) Rendered() bool {
	return q.Format != "" && q.Format != "json"
}

// ImportResponse wraps a receipt for the API.
type ImportResponse struct {
	models.ImportReceipt
	ExceptionCount int `json:"exception_count"`
}

// NewImportResponse builds the API view of a receipt.
func NewImportResponse(receipt *models.ImportReceipt) ImportResponse {
	return ImportResponse{ImportReceipt: *receipt, ExceptionCount: len(receipt.Exceptions)}
}
