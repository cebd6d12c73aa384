// Package reference loads the allowed-value lists the model is constrained
// to: vendor names and chart-of-accounts entries.
package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// VendorColumn is the designated column of a vendor list file.
	VendorColumn = "Payee"
	// AccountColumn is the designated column of a chart-of-accounts file.
	AccountColumn = "Account"
)

// List is the set of allowed strings loaded from one column of a tabular
// file. Read-only once loaded.
type List struct {
	Column string
	values []string
	index  map[string]struct{}
}

// FormatError indicates the source is missing its designated column.
type FormatError struct {
	Source string
	Column string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("reference file %q has no %q column", e.Source, e.Column)
}

// Empty returns a usable zero-value list for the given column. Callers that
// process with an empty vendor list get "Unknown" for every record.
func Empty(column string) *List {
	return &List{Column: column, index: map[string]struct{}{}}
}

// Load reads the designated column from a CSV or XLSX file, keeping the
// distinct non-empty values in first-seen order.
func Load(path, column string) (*List, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls", ".xlsx":
		return loadXLSX(path, column)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open reference file: %w", err)
		}
		defer f.Close()
		return LoadCSV(f, column, filepath.Base(path))
	}
}

// LoadCSV reads the designated column from CSV content. The first row is
// the header.
func LoadCSV(r io.Reader, column, source string) (*List, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{Source: source, Column: column}
	}
	if err != nil {
		return nil, fmt.Errorf("read reference header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.TrimSpace(h) == column {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, &FormatError{Source: source, Column: column}
	}

	list := Empty(column)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference row: %w", err)
		}
		if col < len(row) {
			list.add(row[col])
		}
	}
	return list, nil
}

// loadXLSX reads the designated column from the first sheet of a workbook.
func loadXLSX(path, column string) (*List, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Source: filepath.Base(path), Column: column}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, &FormatError{Source: filepath.Base(path), Column: column}
	}

	col := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == column {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, &FormatError{Source: filepath.Base(path), Column: column}
	}

	list := Empty(column)
	for _, row := range rows[1:] {
		if col < len(row) {
			list.add(row[col])
		}
	}
	return list, nil
}

func (l *List) add(raw string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	if _, seen := l.index[v]; seen {
		return
	}
	l.index[v] = struct{}{}
	l.values = append(l.values, v)
}

// Values returns the loaded entries in first-seen order.
func (l *List) Values() []string {
	return l.values
}

// Contains reports whether v is an exact member of the list.
func (l *List) Contains(v string) bool {
	_, ok := l.index[v]
	return ok
}

// Len returns the number of distinct entries.
func (l *List) Len() int {
	return len(l.values)
}
