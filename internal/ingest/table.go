// Package ingest loads the four source tables from xlsx or csv exports and
// normalizes them into domain rows. The exports come from several factory
// systems with inconsistent headers, so every column is resolved through an
// alias table after whitespace normalization.
package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yingtu-pmc/analyzer-go/internal/engine"
)

// table is one rectangular sheet with its header resolved: rows are raw
// cell strings, columns are addressed by canonical field name.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

// normalizeHeader strips all whitespace from a header cell so that headers
// like "生 產 單 号(  廠方 )" match their canonical spelling.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(h), "")
}

// resolveColumns maps canonical field names to column indexes using the
// alias table. Required fields that resolve to no column fail with a
// SchemaViolationError naming the first alias.
func resolveColumns(tableName string, header []string, aliases map[string][]string, required []string) (map[string]int, error) {
	byHeader := make(map[string]int, len(header))
	for i, h := range header {
		normalized := normalizeHeader(h)
		if normalized == "" {
			continue
		}
		if _, seen := byHeader[normalized]; !seen {
			byHeader[normalized] = i
		}
	}

	columns := make(map[string]int)
	for field, names := range aliases {
		for _, name := range names {
			if idx, ok := byHeader[normalizeHeader(name)]; ok {
				columns[field] = idx
				break
			}
		}
	}

	for _, field := range required {
		if _, ok := columns[field]; !ok {
			return nil, &engine.SchemaViolationError{Table: tableName, Column: aliases[field][0]}
		}
	}
	return columns, nil
}

// cell returns the raw value of a resolved column in a row, or "" when the
// column is absent or the row is short.
func (t *table) cell(row []string, field string) string {
	idx, ok := t.columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *table) has(field string) bool {
	_, ok := t.columns[field]
	return ok
}

// readSheet loads one xlsx sheet into header plus data rows, skipping
// leading rows that precede the header. headerSkip is the number of rows
// above the header, matching exports that carry a title banner.
func readSheet(f *excelize.File, sheet string, headerSkip int) ([]string, [][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) <= headerSkip {
		return nil, nil, nil
	}
	return rows[headerSkip], rows[headerSkip+1:], nil
}

// readCSV loads a csv file into header plus data rows.
func readCSV(path string, headerSkip int) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open csv file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse csv file %s: %w", path, err)
	}
	if len(records) <= headerSkip {
		return nil, nil, nil
	}
	return records[headerSkip], records[headerSkip+1:], nil
}

// isXLSX reports whether the path points at an Excel workbook rather than a
// plain csv export.
func isXLSX(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// emptyRow reports whether every cell of a row is blank.
func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
