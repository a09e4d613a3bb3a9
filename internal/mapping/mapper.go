// Package mapping maps arbitrary header text onto canonical fields and
// projects raw rows into typed rows keyed by those fields.
package mapping

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

var folder = cases.Fold()

// Normalize trims, width-folds, case-folds and collapses internal whitespace.
func Normalize(header string) string {
	folded := folder.String(width.Fold.String(header))
	return strings.Join(strings.Fields(folded), " ")
}

// Mapping records, per canonical field, which column supplies it.
type Mapping struct {
	headers []string
	columns map[Field]int
}

// Map classifies every header and keeps the first header seen for each field.
// Only the requested fields are considered; with none given all are.
func Map(headers []string, fields ...Field) Mapping {
	if len(fields) == 0 {
		fields = priority
	}
	allowed := make(map[Field]struct{}, len(fields))
	for _, f := range fields {
		allowed[f] = struct{}{}
	}

	m := Mapping{headers: headers, columns: make(map[Field]int, len(fields))}
	for idx, header := range headers {
		field, ok := classify(header, allowed)
		if !ok {
			continue
		}
		if _, taken := m.columns[field]; taken {
			continue
		}
		m.columns[field] = idx
	}
	return m
}

func classify(header string, allowed map[Field]struct{}) (Field, bool) {
	key := Normalize(header)
	if key == "" {
		return "", false
	}
	compact := strings.ReplaceAll(key, " ", "")

	for _, f := range priority {
		if _, ok := allowed[f]; !ok {
			continue
		}
		for _, alias := range aliasTable[f].exact {
			if alias == key || strings.ReplaceAll(alias, " ", "") == compact {
				return f, true
			}
		}
	}
	for _, f := range priority {
		if _, ok := allowed[f]; !ok {
			continue
		}
		for _, kw := range aliasTable[f].keywords {
			if strings.Contains(key, kw) || strings.Contains(compact, kw) {
				return f, true
			}
		}
	}
	return "", false
}

// Has reports whether the field was mapped.
func (m Mapping) Has(f Field) bool {
	_, ok := m.columns[f]
	return ok
}

// Index returns the column index for the field, or -1.
func (m Mapping) Index(f Field) int {
	if idx, ok := m.columns[f]; ok {
		return idx
	}
	return -1
}

// Header returns the original header text mapped to the field.
func (m Mapping) Header(f Field) string {
	if idx, ok := m.columns[f]; ok {
		return m.headers[idx]
	}
	return ""
}

// Fields lists the mapped fields as field -> header text.
func (m Mapping) Fields() map[Field]string {
	out := make(map[Field]string, len(m.columns))
	for f, idx := range m.columns {
		out[f] = m.headers[idx]
	}
	return out
}

// Project converts positional cells into a Row keyed by canonical field.
func (m Mapping) Project(cells []string) Row {
	values := make(map[Field]string, len(m.columns))
	for f, idx := range m.columns {
		if idx < len(cells) {
			values[f] = strings.TrimSpace(cells[idx])
		}
	}
	return Row{values: values}
}
