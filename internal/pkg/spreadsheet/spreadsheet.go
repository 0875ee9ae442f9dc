// internal/pkg/spreadsheet/spreadsheet.go
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Parse failures are fatal for the whole upload; row-level problems are the
// importer's concern, not this package's.
var (
	ErrNoWorksheet = errors.New("spreadsheet has no worksheet")
	ErrNoHeaderRow = errors.New("spreadsheet has no header row")
	ErrNoHeaders   = errors.New("header row has no columns")
	ErrUnsupported = errors.New("unsupported file type")
)

// Table is the uniform result of parsing an upload: one header row plus zero
// or more data rows, all values as strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Parse reads an .xlsx, .xls or .csv upload into a Table. The filename is
// only used to pick the decoder.
func Parse(filename string, data []byte) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls":
		return parseExcel(data)
	case ".csv":
		return parseCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(filename))
	}
}

func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are tolerated

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return tableFromRows(records)
}

func tableFromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeaderRow
	}

	headers := rows[0]
	empty := true
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			empty = false
			break
		}
	}
	if empty {
		return nil, ErrNoHeaders
	}

	return &Table{Headers: headers, Rows: rows[1:]}, nil
}

// Value returns the trimmed cell at column idx, or "" when the row is short.
func (t *Table) Value(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// HeaderIndex returns the column index of the first header for which match
// returns true, or -1.
func (t *Table) HeaderIndex(match func(string) bool) int {
	for i, h := range t.Headers {
		if match(h) {
			return i
		}
	}
	return -1
}
