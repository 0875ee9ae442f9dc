package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func xlsxBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseCSV(t *testing.T) {
	data := []byte("Account Number,Name,Arrears\nACC001,First,100\nACC002,Second\n")

	table, err := Parse("upload.csv", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Account Number", "Name", "Arrears"}, table.Headers)
	require.Len(t, table.Rows, 2)
	// Ragged rows are tolerated; short cells read as "".
	assert.Equal(t, "", table.Value(table.Rows[1], 2))
	assert.Equal(t, "100", table.Value(table.Rows[0], 2))
}

func TestParseXLSX(t *testing.T) {
	data := xlsxBytes(t, [][]interface{}{
		{"Account Number", "Name"},
		{"ACC001", "First"},
		{"ACC002", "Second"},
	})

	table, err := Parse("upload.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Account Number", "Name"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "ACC002", table.Value(table.Rows[1], 0))
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("upload.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseEmptyFileFails(t *testing.T) {
	_, err := Parse("upload.csv", nil)
	assert.ErrorIs(t, err, ErrNoHeaderRow)
}

func TestParseBlankHeaderRowFails(t *testing.T) {
	_, err := Parse("upload.csv", []byte("  , ,\nACC001,First,100\n"))
	assert.ErrorIs(t, err, ErrNoHeaders)
}

func TestParseCorruptWorkbookFails(t *testing.T) {
	_, err := Parse("upload.xlsx", []byte("not a zip archive"))
	require.Error(t, err)
}

func TestValueOutOfRange(t *testing.T) {
	table := &Table{Headers: []string{"a"}, Rows: [][]string{{" x "}}}

	assert.Equal(t, "x", table.Value(table.Rows[0], 0))
	assert.Equal(t, "", table.Value(table.Rows[0], 5))
	assert.Equal(t, "", table.Value(table.Rows[0], -1))
}

func TestGenerateTemplateRoundTrips(t *testing.T) {
	headers := []string{"Account Number", "Customer Name"}

	data, err := GenerateTemplate("Customers", headers)
	require.NoError(t, err)

	table, err := Parse("template.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, headers, table.Headers)
	assert.Empty(t, table.Rows)
}
