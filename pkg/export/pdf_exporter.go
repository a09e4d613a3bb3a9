package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const utf8Family = "roster"

// PDFExporter renders datasets into a basic tabular PDF. Without a UTF-8 font
// text is translated to cp1252 and CJK characters are lost.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter using the core fonts.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// NewPDFExporterWithFont constructs a PDF exporter embedding the TrueType font
// at fontPath.
func NewPDFExporterWithFont(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	family := "Arial"
	text := pdf.UnicodeTranslatorFromDescriptor("")
	if e.fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", e.fontPath)
		pdf.AddUTF8Font(utf8Family, "B", e.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font: %w", err)
		}
		family = utf8Family
		text = func(s string) string { return s }
	}
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, text(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(data.Headers))

	pdf.SetFont(family, "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, text(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, text(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
