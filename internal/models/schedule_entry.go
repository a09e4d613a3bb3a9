package models

import "time"

// ScheduleEntry is one course row extracted from a document table.
type ScheduleEntry struct {
	TableIndex  int        `json:"table_index"`
	RowIndex    int        `json:"row_index"`
	CourseName  string     `json:"course_name"`
	TeacherName string     `json:"teacher_name,omitempty"`
	Teachers    []string   `json:"teachers,omitempty"`
	Date        *time.Time `json:"date"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	Location    *string    `json:"location,omitempty"`
	SessionID   *string    `json:"session_id,omitempty"`
}
