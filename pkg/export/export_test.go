package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Sheet", "Row", "Reason"},
		Rows: []map[string]string{
			{"Sheet": "一班", "Row": "3", "Reason": "invalid_phone"},
			{"Sheet": "二班", "Reason": "no_phone_column"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(payload, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(payload[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"一班", "3", "invalid_phone"}, records[1])
	assert.Equal(t, []string{"二班", "", "no_phone_column"}, records[2])
}

func TestCSVExporterWithoutBOM(t *testing.T) {
	payload, err := (&CSVExporter{}).Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("Sheet,Row,Reason")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset(), "Import exceptions")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
