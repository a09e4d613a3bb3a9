// Package source reads tabular rosters and document tables from saved files.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind identifies the physical format of a source file.
type Kind string

const (
	KindSpreadsheet Kind = "xlsx"
	KindDelimited   Kind = "csv"
	KindDocument    Kind = "docx"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrUnsupported is returned for files that are neither rosters nor documents.
var ErrUnsupported = errors.New("unsupported source format")

// Record is one physical row together with its 1-based line in the source.
type Record struct {
	Line  int
	Cells []string
}

// Blank reports whether every cell is empty.
func (r Record) Blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Sheet is a roster table: a header row followed by data records.
type Sheet struct {
	Name       string
	HeaderLine int
	Headers    []string
	Records    []Record
}

// Empty reports whether the sheet carries no header and no data.
func (s Sheet) Empty() bool {
	return len(s.Headers) == 0
}

// Table is a document table as rows of cell text. Rows[0] is the header row.
type Table struct {
	Index int
	Rows  [][]string
}

// DetectKind sniffs the content type and falls back to the file extension.
func DetectKind(path string) (Kind, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect source type: %w", err)
	}
	switch {
	case mtype.Is(mimeXLSX):
		return KindSpreadsheet, nil
	case mtype.Is(mimeDOCX):
		return KindDocument, nil
	case mtype.Is("text/csv"), mtype.Is("text/tab-separated-values"):
		return KindDelimited, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		if isZipContainer(mtype) {
			return KindSpreadsheet, nil
		}
	case ".docx":
		if isZipContainer(mtype) {
			return KindDocument, nil
		}
	case ".csv", ".tsv", ".txt":
		if strings.HasPrefix(mtype.String(), "text/") || mtype.Is("application/octet-stream") {
			return KindDelimited, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, mtype.String())
}

func isZipContainer(mtype *mimetype.MIME) bool {
	return mtype.Is("application/zip") || strings.Contains(mtype.String(), "openxmlformats")
}

// Reader dispatches source files to the matching format reader.
type Reader struct{}

// NewReader constructs a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadSheets returns every roster sheet of a spreadsheet or delimited file.
func (r *Reader) ReadSheets(path string) ([]Sheet, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindSpreadsheet:
		return readWorkbook(path)
	case KindDelimited:
		return readDelimited(path)
	default:
		return nil, fmt.Errorf("%w: %s is not a roster", ErrUnsupported, kind)
	}
}

// ReadTables returns every table of a docx document in document order.
func (r *Reader) ReadTables(path string) ([]Table, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}
	if kind != KindDocument {
		return nil, fmt.Errorf("%w: %s is not a document", ErrUnsupported, kind)
	}
	return readDocument(path)
}

// buildSheet locates the header row (first non-blank record) and keeps the
// records after it.
func buildSheet(name string, records []Record) Sheet {
	sheet := Sheet{Name: name}
	for i, rec := range records {
		if rec.Blank() {
			continue
		}
		sheet.HeaderLine = rec.Line
		sheet.Headers = pad(rec.Cells, 0)
		rest := records[i+1:]
		sheet.Records = make([]Record, 0, len(rest))
		for _, r := range rest {
			sheet.Records = append(sheet.Records, Record{Line: r.Line, Cells: pad(r.Cells, len(sheet.Headers))})
		}
		break
	}
	return sheet
}

func pad(cells []string, n int) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	for len(out) < n {
		out = append(out, "")
	}
	return out
}
