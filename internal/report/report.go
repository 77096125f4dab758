// Package report renders reconciliation results as CSV or XLSX.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/period"
	"github.com/cleared-dev/recon/internal/reconcile"
	"github.com/cleared-dev/recon/internal/tabular"
)

const (
	recordsSheet = "records"
	summarySheet = "summary"
	filePrefix   = "reconciliation"
)

// Header is the column layout of the records table.
var Header = []string{
	"date", "client_tag", "account_code", "account_name", "direction",
	"account_type", "status", "signed_value", "abs_value", "match_id", "description",
}

// MarshalLeg converts a leg into a records row. Unmatched legs have an
// empty match_id.
func MarshalLeg(l model.Leg) []string {
	matchID := ""
	if l.Matched() {
		matchID = strconv.Itoa(l.MatchID)
	}
	d := ""
	if !l.Date.IsZero() {
		d = l.Date.Format(time.DateOnly)
	}
	return []string{
		d,
		l.ClientTag.String(),
		l.AccountCode,
		l.AccountName,
		string(l.Direction),
		string(l.AccountType),
		string(l.Status),
		l.SignedValue.StringFixed(2),
		l.AbsValue.StringFixed(2),
		matchID,
		l.Description,
	}
}

// WriteCSV writes the records table.
func WriteCSV(w io.Writer, res *reconcile.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, l := range res.Legs {
		if err := cw.Write(MarshalLeg(l)); err != nil {
			return fmt.Errorf("writing leg %d: %w", l.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a records sheet and a summary sheet of
// leg counts and totals per status.
func WriteXLSX(w io.Writer, res *reconcile.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), recordsSheet); err != nil {
		return fmt.Errorf("naming records sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	if err := f.SetSheetRow(recordsSheet, "A1", &Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, l := range res.Legs {
		row := MarshalLeg(l)
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		// Values go in as numbers so the sheet can sum them.
		cells[7] = l.SignedValue.InexactFloat64()
		cells[8] = l.AbsValue.InexactFloat64()
		if l.Matched() {
			cells[9] = l.MatchID
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(recordsSheet, cell, &cells); err != nil {
			return fmt.Errorf("writing leg %d: %w", l.Index, err)
		}
	}
	if len(res.Legs) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(Header), len(res.Legs)+1)
		if err := f.AutoFilter(recordsSheet, "A1:"+last, nil); err != nil {
			return fmt.Errorf("setting filter: %w", err)
		}
	}

	summary := [][]any{
		{"Reconciliation"},
		{},
		{"Tenant", res.Tenant},
		{"Run", res.RunID.String()},
		{"From", res.Window.Start.Format(time.DateOnly)},
		{"To (exclusive)", res.Window.End.Format(time.DateOnly)},
		{"Entries", res.Entries},
		{"Legs", len(res.Legs)},
		{"Pairs", res.Pairs},
		{},
		{"Status", "Legs", "Total"},
	}
	for _, st := range res.Summary {
		summary = append(summary, []any{string(st.Status), st.Legs, st.Total.InexactFloat64()})
	}
	for i, row := range summary {
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Write renders res in format.
func Write(w io.Writer, format tabular.Format, res *reconcile.Result) error {
	switch format {
	case tabular.FormatCSV:
		return WriteCSV(w, res)
	case tabular.FormatXLSX:
		return WriteXLSX(w, res)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// FileName returns "reconciliation_<period>_<run>.<ext>".
func FileName(res *reconcile.Result, format tabular.Format) string {
	return fmt.Sprintf("%s_%s_%s.%s", filePrefix, period.Label(res.Window), res.RunID.String()[:8], format)
}

// Save writes the report into dir and returns its path.
func Save(dir string, format tabular.Format, res *reconcile.Result) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, res); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}
	path := filepath.Join(dir, FileName(res, format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
