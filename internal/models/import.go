package models

import "time"

// ImportExceptionReason classifies why a row or table was not imported.
type ImportExceptionReason string

const (
	ReasonInvalidPhone  ImportExceptionReason = "invalid_phone"
	ReasonNoPhoneColumn ImportExceptionReason = "no_phone_column"
)

// ImportException records a skipped row, or a skipped table when RowIndex is nil.
type ImportException struct {
	Sheet    string                `json:"sheet"`
	RowIndex *int                  `json:"row_index"`
	Reason   ImportExceptionReason `json:"reason"`
	Detail   string                `json:"detail,omitempty"`
}

// ImportReceipt summarizes one committed import call.
type ImportReceipt struct {
	SessionID          string            `json:"session_id"`
	SourceFile         string            `json:"source_file"`
	Fingerprint        string            `json:"fingerprint"`
	PreviouslyImported bool              `json:"previously_imported"`
	RowsSeen           int               `json:"rows_seen"`
	RowsImported       int               `json:"rows_imported"`
	NewPersonCount     int               `json:"new_person_count"`
	NewEnrollmentCount int               `json:"new_enrollment_count"`
	Exceptions         []ImportException `json:"exceptions"`
}

// ImportBatch is the persisted audit line of a committed import.
type ImportBatch struct {
	ID                 string    `db:"id" json:"id"`
	SessionID          string    `db:"session_id" json:"session_id"`
	SourceFile         string    `db:"source_file" json:"source_file"`
	Fingerprint        string    `db:"fingerprint" json:"fingerprint"`
	RowsSeen           int       `db:"rows_seen" json:"rows_seen"`
	RowsImported       int       `db:"rows_imported" json:"rows_imported"`
	NewPersonCount     int       `db:"new_person_count" json:"new_person_count"`
	NewEnrollmentCount int       `db:"new_enrollment_count" json:"new_enrollment_count"`
	ExceptionCount     int       `db:"exception_count" json:"exception_count"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
