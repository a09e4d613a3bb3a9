package dto

import "github.com/noah-isme/training-import/internal/models"

// ScheduleForm carries the non-file fields of a schedule upload.
type ScheduleForm struct {
	DefaultYear int    `form:"default_year" binding:"omitempty,min=1900,max=9999"`
	Location    string `form:"location"`
	SessionID   string `form:"session_id"`
}

// ScheduleResponse lists extracted entries.
type ScheduleResponse struct {
	Count   int                    `json:"count"`
	Entries []models.ScheduleEntry `json:"entries"`
}
