// Package tabular reads header-addressed tables from CSV and XLSX uploads.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cleared-dev/recon/internal/apperrors"
)

// Format identifies a table encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadRows returns all rows of the first sheet (XLSX) or the whole file (CSV).
// XLSX cells are returned raw: dates come back as serial numbers.
func ReadRows(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		records, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		return records, nil
	case FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening workbook: %w", err)
		}
		defer f.Close()

		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Column declares a logical column and the header labels it may appear under.
type Column struct {
	Name     string
	Aliases  []string
	Required bool
}

// Table is a header-indexed view over raw rows.
type Table struct {
	source string
	rows   [][]string
	lines  []int // original 1-based line number per data row
	index  map[string]int
}

// NewTable resolves cols against the first row of rows. Blank data rows are dropped.
// It fails with a SchemaError when the table has no data rows or a
// required column is absent.
func NewTable(source string, rows [][]string, cols []Column) (*Table, error) {
	if len(rows) == 0 {
		return nil, &apperrors.SchemaError{Source: source, Detail: "table is empty"}
	}

	headers := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if _, dup := headers[key]; !dup {
			headers[key] = i
		}
	}

	t := &Table{source: source, index: make(map[string]int, len(cols))}
	var missing []string
	for _, c := range cols {
		pos, ok := lookup(headers, c)
		if !ok {
			if c.Required {
				missing = append(missing, c.Name)
			}
			continue
		}
		t.index[c.Name] = pos
	}
	if len(missing) > 0 {
		return nil, &apperrors.SchemaError{Source: source, Missing: missing}
	}

	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, i+2)
	}
	if len(t.rows) == 0 {
		return nil, &apperrors.SchemaError{Source: source, Detail: "table has no data rows"}
	}
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Line returns the 1-based source line of data row i.
func (t *Table) Line(i int) int { return t.lines[i] }

// Source returns the table's source label.
func (t *Table) Source() string { return t.source }

// Has reports whether the optional column was found in the header.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Value returns the trimmed cell for data row i and column name, or "".
func (t *Table) Value(i int, name string) string {
	pos, ok := t.index[name]
	if !ok {
		return ""
	}
	row := t.rows[i]
	if pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func lookup(headers map[string]int, c Column) (int, bool) {
	if pos, ok := headers[normalizeHeader(c.Name)]; ok {
		return pos, true
	}
	for _, a := range c.Aliases {
		if pos, ok := headers[normalizeHeader(a)]; ok {
			return pos, true
		}
	}
	return 0, false
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader folds case, accents and separators so that
// "Conta Débito", "conta_debito" and "CONTA DEBITO" compare equal.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, h)
	if err != nil {
		folded = h
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = strings.NewReplacer("_", " ", "-", " ").Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}
