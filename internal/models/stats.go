package models

import "time"

// TopLearner is a person ranked by enrollments within a year.
type TopLearner struct {
	PersonID    string  `db:"person_id" json:"person_id"`
	PhoneKey    string  `db:"phone_key" json:"phone_key"`
	LatestName  *string `db:"latest_name" json:"latest_name,omitempty"`
	Enrollments int     `db:"enrollments" json:"enrollments"`
}

// YearSummary aggregates enrollments of sessions starting in Year.
type YearSummary struct {
	Year         int          `json:"year"`
	Enrollments  int          `json:"enrollments"`
	UniquePeople int          `json:"unique_people"`
	RepeatPeople int          `json:"repeat_people"`
	TopLearners  []TopLearner `json:"top_learners"`
	GeneratedAt  time.Time    `json:"generated_at"`
}
