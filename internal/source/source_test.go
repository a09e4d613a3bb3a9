package source

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func writeWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadSheetsWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"一班": {
			{"姓名", "手机号", "单位"},
			{"张三", 13812345678, "市一中"},
			{"", "", ""},
			{"李四", "139-0000-1111", nil},
		},
		"空表": {},
	}, []string{"一班", "空表"})

	sheets, err := NewReader().ReadSheets(path)
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	first := sheets[0]
	assert.Equal(t, "一班", first.Name)
	assert.Equal(t, 1, first.HeaderLine)
	assert.Equal(t, []string{"姓名", "手机号", "单位"}, first.Headers)
	require.Len(t, first.Records, 3)
	assert.Equal(t, 2, first.Records[0].Line)
	assert.Equal(t, "13812345678", first.Records[0].Cells[1])
	assert.True(t, first.Records[1].Blank())
	assert.Equal(t, 4, first.Records[2].Line)
	assert.Len(t, first.Records[2].Cells, 3)

	assert.True(t, sheets[1].Empty())
}

func TestReadSheetsDelimitedUTF8WithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	content := "\xEF\xBB\xBF\n姓名,手机,地区\n王五, 13700001111 ,华东\n,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sheets, err := NewReader().ReadSheets(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "roster", sheets[0].Name)
	assert.Equal(t, []string{"姓名", "手机", "地区"}, sheets[0].Headers)
	require.Len(t, sheets[0].Records, 2)
	assert.Equal(t, []string{"王五", "13700001111", "华东"}, sheets[0].Records[0].Cells)
	assert.True(t, sheets[0].Records[1].Blank())
}

func TestReadSheetsDelimitedGB18030(t *testing.T) {
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String("姓名,手机\n赵六,13600002222\n")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "legacy.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	sheets, err := NewReader().ReadSheets(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, []string{"姓名", "手机"}, sheets[0].Headers)
	assert.Equal(t, "赵六", sheets[0].Records[0].Cells[0])
}

const docxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>培训日程</w:t></w:r></w:p>
<w:tbl>
 <w:tr>
  <w:tc><w:p><w:r><w:t>日期</w:t></w:r></w:p></w:tc>
  <w:tc><w:p><w:r><w:t>时间</w:t></w:r></w:p></w:tc>
  <w:tc><w:p><w:r><w:t>课程</w:t></w:r></w:p></w:tc>
 </w:tr>
 <w:tr>
  <w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p><w:r><w:t>5月1日</w:t></w:r></w:p></w:tc>
  <w:tc><w:p><w:r><w:t xml:space="preserve">9:00</w:t></w:r><w:r><w:t>-10:00</w:t></w:r></w:p></w:tc>
  <w:tc><w:p><w:r><w:t>开班</w:t></w:r></w:p><w:p><w:r><w:t>仪式</w:t></w:r></w:p></w:tc>
 </w:tr>
 <w:tr>
  <w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
  <w:tc><w:tcPr><w:gridSpan w:val="2"/></w:tcPr><w:p><w:r><w:t>午休</w:t></w:r></w:p></w:tc>
 </w:tr>
</w:tbl>
<w:tbl>
 <w:tr><w:tc><w:p><w:r><w:t>备注</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body>
</w:document>`

func writeDocx(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`,
		"word/document.xml":   body,
	}
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestReadTablesDocument(t *testing.T) {
	tables, err := NewReader().ReadTables(writeDocx(t, docxBody))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	sched := tables[0]
	assert.Equal(t, 0, sched.Index)
	require.Len(t, sched.Rows, 3)
	assert.Equal(t, []string{"日期", "时间", "课程"}, sched.Rows[0])
	assert.Equal(t, []string{"5月1日", "9:00-10:00", "开班\n仪式"}, sched.Rows[1])
	assert.Equal(t, []string{"", "午休", "午休"}, sched.Rows[2])

	assert.Equal(t, [][]string{{"备注"}}, tables[1].Rows)
}

func TestReadTablesRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a zip"), 0o644))

	_, err := NewReader().ReadTables(path)
	require.Error(t, err)
}

func TestReadSheetsRejectsDocument(t *testing.T) {
	_, err := NewReader().ReadSheets(writeDocx(t, docxBody))
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestFingerprintStable(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("姓名,手机\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("姓名,手机\n"), 0o644))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)
}

func TestReadSheetsDelimitedTabSeparated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.tsv")
	content := "姓名\t手机\t单位\n孙七\t13500003333\t培训中心, 教务处\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sheets, err := NewReader().ReadSheets(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, []string{"姓名", "手机", "单位"}, sheets[0].Headers)
	require.Len(t, sheets[0].Records, 1)
	assert.Equal(t, []string{"孙七", "13500003333", "培训中心, 教务处"}, sheets[0].Records[0].Cells)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, '\t', sniffDelimiter([]byte("a\tb\tc\n1,2\t3\n")))
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b,c\n1\t2\t3\t4\n")))
	assert.Equal(t, ',', sniffDelimiter([]byte("single")))
}

func TestPlainNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.3812345678E+10", "13812345678"},
		{"1.3812345678e10", "13812345678"},
		{"13812345678", "13812345678"},
		{"1.5E-1", "1.5E-1"},
		{"1.23456789012E+4", "1.23456789012E+4"},
		{"1E+15", "1E+15"},
		{"Eve", "Eve"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, plainNumber(tc.in))
		})
	}
}

const nestedDocxBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:tbl>
 <w:tr>
  <w:tc><w:p><w:r><w:t>日期</w:t></w:r></w:p></w:tc>
  <w:tc><w:p><w:r><w:t>课程</w:t></w:r></w:p></w:tc>
 </w:tr>
 <w:tr>
  <w:tc><w:p><w:r><w:t>5月1日</w:t></w:r></w:p></w:tc>
  <w:tc>
   <w:p><w:r><w:t>A</w:t></w:r></w:p>
   <w:tbl><w:tr><w:tc><w:p><w:r><w:t>inner</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
  </w:tc>
 </w:tr>
 <w:tr>
  <w:trPr><w:gridBefore w:val="1"/></w:trPr>
  <w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc>
 </w:tr>
 <w:tr>
  <w:trPr><w:gridAfter w:val="1"/></w:trPr>
  <w:tc><w:p><w:r><w:t>5月2日</w:t></w:r></w:p></w:tc>
 </w:tr>
</w:tbl>
</w:body>
</w:document>`

func TestReadTablesNestedAndSkippedGridColumns(t *testing.T) {
	tables, err := NewReader().ReadTables(writeDocx(t, nestedDocxBody))
	require.NoError(t, err)
	require.Len(t, tables, 2)

	outer := tables[0]
	assert.Equal(t, 0, outer.Index)
	require.Len(t, outer.Rows, 4)
	assert.Equal(t, []string{"5月1日", "A"}, outer.Rows[1])
	assert.Equal(t, []string{"", "B"}, outer.Rows[2])
	assert.Equal(t, []string{"5月2日", ""}, outer.Rows[3])

	assert.Equal(t, Table{Index: 1, Rows: [][]string{{"inner"}}}, tables[1])
}
