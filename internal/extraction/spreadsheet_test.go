package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/avelez/scoping-agent/internal/types"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Product description"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Wireless headphones with noise cancellation"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Return policy"))

	_, err := f.NewSheet("Legal")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Legal", "A1", "Warranty terms apply"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractSpreadsheet(t *testing.T) {
	e := New(nil)
	rec := e.Extract("jobs/catalog.xlsx", buildWorkbook(t))

	require.Equal(t, types.ExtractionSuccess, rec.Status)
	assert.Equal(t, types.FormatSpreadsheet, rec.Format)
	require.NotNil(t, rec.Metadata.SheetCount)
	assert.Equal(t, 2, *rec.Metadata.SheetCount)
	require.NotNil(t, rec.Metadata.RowCount)
	assert.Equal(t, 3, *rec.Metadata.RowCount)
	assert.Contains(t, rec.Text, "noise cancellation")
	assert.Contains(t, rec.Text, "Warranty terms apply")
}

func TestExtractSpreadsheetCorrupt(t *testing.T) {
	e := New(nil)
	rec := e.Extract("jobs/broken.xlsx", []byte("garbage"))
	assert.Equal(t, types.ExtractionFailed, rec.Status)
}
