package source

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const documentPart = "word/document.xml"

func readDocument(path string) ([]Table, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer archive.Close() //nolint:errcheck

	for _, file := range archive.File {
		if file.Name != documentPart {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open document body: %w", err)
		}
		defer rc.Close() //nolint:errcheck
		return parseDocumentTables(rc)
	}
	return nil, fmt.Errorf("open document: %s missing", documentPart)
}

type tableBuilder struct {
	table *Table
	row   []string
	cell  strings.Builder
	paras int
	span  int
	after int
	inRow bool
	inTc  bool
}

// parseDocumentTables walks WordprocessingML and collects w:tbl elements.
// Nested tables become their own entries; their text is not folded into the
// enclosing cell.
func parseDocumentTables(r io.Reader) ([]Table, error) {
	decoder := xml.NewDecoder(r)
	var (
		tables []*Table
		stack  []*tableBuilder
		inText bool
	)
	top := func() *tableBuilder {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			b := top()
			switch el.Name.Local {
			case "tbl":
				t := &Table{Index: len(tables)}
				tables = append(tables, t)
				stack = append(stack, &tableBuilder{table: t})
			case "tr":
				if b != nil {
					b.row = nil
					b.after = 0
					b.inRow = true
				}
			case "gridBefore":
				if b != nil && b.inRow && !b.inTc {
					for i := 0; i < gridVal(el); i++ {
						b.row = append(b.row, "")
					}
				}
			case "gridAfter":
				if b != nil && b.inRow && !b.inTc {
					b.after = gridVal(el)
				}
			case "tc":
				if b != nil && b.inRow {
					b.cell.Reset()
					b.paras = 0
					b.span = 1
					b.inTc = true
				}
			case "gridSpan":
				if b != nil && b.inTc {
					if n := gridVal(el); n > 1 {
						b.span = n
					}
				}
			case "p":
				if b != nil && b.inTc {
					if b.paras > 0 {
						b.cell.WriteByte('\n')
					}
					b.paras++
				}
			case "t":
				inText = b != nil && b.inTc
			case "tab", "br", "cr":
				if b != nil && b.inTc {
					b.cell.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inText {
				top().cell.Write(el)
			}
		case xml.EndElement:
			b := top()
			switch el.Name.Local {
			case "t":
				inText = false
			case "tc":
				if b != nil && b.inTc {
					text := strings.TrimSpace(b.cell.String())
					for i := 0; i < b.span; i++ {
						b.row = append(b.row, text)
					}
					b.inTc = false
				}
			case "tr":
				if b != nil && b.inRow {
					for i := 0; i < b.after; i++ {
						b.row = append(b.row, "")
					}
					b.table.Rows = append(b.table.Rows, b.row)
					b.inRow = false
				}
			case "tbl":
				if b != nil {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}

	out := make([]Table, len(tables))
	for i, t := range tables {
		out[i] = *t
	}
	return out, nil
}

// gridVal reads the w:val count of a grid element, 0 when absent or invalid.
func gridVal(el xml.StartElement) int {
	for _, attr := range el.Attr {
		if attr.Name.Local == "val" {
			if n, err := strconv.Atoi(attr.Value); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}
