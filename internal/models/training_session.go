package models

import "time"

// TrainingSession is the course run enrollments are bound to.
type TrainingSession struct {
	ID        string     `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	Location  *string    `db:"location" json:"location,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// SessionFilter describes list parameters for sessions.
type SessionFilter struct {
	Year     int `form:"year"`
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}
