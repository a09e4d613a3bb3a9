// Package schedule turns course-schedule tables into dated schedule entries,
// inferring dates and times that merged cells leave blank.
package schedule

import (
	"strings"
	"time"

	"github.com/noah-isme/training-import/internal/mapping"
	"github.com/noah-isme/training-import/internal/models"
	"github.com/noah-isme/training-import/internal/source"
)

// DefaultPlaceholderLabels mark rows that are day-part, travel or meal markers, not courses.
var DefaultPlaceholderLabels = []string{
	"报到", "报到注册", "返程", "离会", "上午", "下午",
	"午餐", "午饭", "午休", "晚餐", "晚饭", "茶歇",
	"arrival", "departure", "morning", "afternoon",
	"lunch", "lunch break", "dinner", "tea break",
}

// Options carries per-call inputs that are copied onto entries or used as defaults.
type Options struct {
	DefaultYear int
	Location    *string
	SessionID   *string
	TZ          *time.Location
}

// Extractor parses schedule tables.
type Extractor struct {
	placeholders map[string]struct{}
}

// NewExtractor builds an extractor that skips the given placeholder labels.
// A nil slice selects DefaultPlaceholderLabels; an empty one disables skipping.
func NewExtractor(placeholderLabels []string) *Extractor {
	if placeholderLabels == nil {
		placeholderLabels = DefaultPlaceholderLabels
	}
	set := make(map[string]struct{}, len(placeholderLabels))
	for _, label := range placeholderLabels {
		if key := mapping.Normalize(label); key != "" {
			set[key] = struct{}{}
		}
	}
	return &Extractor{placeholders: set}
}

// Extract returns one entry per accepted course row across all tables.
// Tables whose header row has no course column are ignored.
func (e *Extractor) Extract(tables []source.Table, opts Options) []models.ScheduleEntry {
	entries := make([]models.ScheduleEntry, 0)
	for _, table := range tables {
		entries = append(entries, e.extractTable(table, opts)...)
	}
	return entries
}

func (e *Extractor) extractTable(table source.Table, opts Options) []models.ScheduleEntry {
	if len(table.Rows) == 0 {
		return nil
	}
	cols := mapping.Map(table.Rows[0], mapping.ScheduleFields...)
	if !cols.Has(mapping.FieldCourse) {
		return nil
	}

	var (
		entries      []models.ScheduleEntry
		lastSeenDate string
		lastSeenTime string
	)
	for idx := 1; idx < len(table.Rows); idx++ {
		row := cols.Project(table.Rows[idx])
		course := row.Get(mapping.FieldCourse)
		if course == "" || e.isPlaceholder(course) {
			continue
		}

		dateText := row.Get(mapping.FieldDate)
		if dateText != "" {
			lastSeenDate = dateText
		} else {
			dateText = lastSeenDate
		}
		timeText := row.Get(mapping.FieldTime)
		if timeText != "" {
			lastSeenTime = timeText
		} else {
			timeText = lastSeenTime
		}

		date := ParseDate(dateText, opts.DefaultYear, opts.TZ)
		start, end := ParseTimes(timeText)
		startAt, endAt := combine(date, start, end)

		teacher := row.Get(mapping.FieldTeacher)
		entries = append(entries, models.ScheduleEntry{
			TableIndex:  table.Index,
			RowIndex:    idx,
			CourseName:  course,
			TeacherName: teacher,
			Teachers:    splitTeachers(teacher),
			Date:        date,
			StartAt:     startAt,
			EndAt:       endAt,
			Location:    opts.Location,
			SessionID:   opts.SessionID,
		})
	}
	return entries
}

func (e *Extractor) isPlaceholder(course string) bool {
	_, ok := e.placeholders[mapping.Normalize(course)]
	return ok
}

func splitTeachers(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case ',', '，', '、', '/', '／', ';', '；', '\n':
			return true
		}
		return false
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
