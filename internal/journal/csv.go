package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/recon/internal/apperrors"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tabular"
)

const (
	numFields    = 5
	dateFormat   = "2006-01-02"
	colDate      = 0
	colDebit     = 1
	colCredit    = 2
	colValue     = 3
	colDesc      = 4
	sourceLedger = "ledger"
)

// Header is the CSV header written by WriteLedger.
var Header = []string{"date", "debit_account", "credit_account", "value", "description"}

// Columns accepts the English header and the labels of the Portuguese
// bookkeeping export.
var Columns = []tabular.Column{
	{Name: "date", Aliases: []string{"Data"}, Required: true},
	{Name: "debit_account", Aliases: []string{"Conta Débito", "debit"}, Required: true},
	{Name: "credit_account", Aliases: []string{"Conta Crédito", "credit"}, Required: true},
	{Name: "value", Aliases: []string{"Valor", "amount"}, Required: true},
	{Name: "description", Aliases: []string{"Descrição Histórico", "Histórico", "memo"}},
}

// dateLayouts are tried in order for text dates.
var dateLayouts = []string{
	dateFormat,
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
}

// ReadLedger reads ledger rows in CSV or XLSX form.
// Rows without a date are kept with a zero date; no window contains them.
func ReadLedger(r io.Reader, format tabular.Format) ([]model.LedgerEntry, error) {
	rows, err := tabular.ReadRows(r, format)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	tbl, err := tabular.NewTable(sourceLedger, rows, Columns)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LedgerEntry, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		e, err := UnmarshalEntry(tbl, i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteLedger writes entries as CSV (including header).
func WriteLedger(w io.Writer, entries []model.LedgerEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalEntry converts a LedgerEntry to a CSV row.
func MarshalEntry(e model.LedgerEntry) []string {
	row := make([]string, numFields)
	if !e.Date.IsZero() {
		row[colDate] = e.Date.Format(dateFormat)
	}
	row[colDebit] = e.DebitAccount
	row[colCredit] = e.CreditAccount
	row[colValue] = e.Value.StringFixed(2)
	row[colDesc] = e.Description
	return row
}

// UnmarshalEntry converts data row i of a ledger table to a LedgerEntry.
func UnmarshalEntry(tbl *tabular.Table, i int) (model.LedgerEntry, error) {
	rawDate := tbl.Value(i, "date")
	date, err := ParseDate(rawDate)
	if err != nil {
		return model.LedgerEntry{}, &apperrors.ParseError{Source: sourceLedger, Row: tbl.Line(i), Field: "date", Value: rawDate, Err: err}
	}

	rawValue := tbl.Value(i, "value")
	value, err := ParseValue(rawValue)
	if err != nil {
		return model.LedgerEntry{}, &apperrors.ParseError{Source: sourceLedger, Row: tbl.Line(i), Field: "value", Value: rawValue, Err: err}
	}

	return model.LedgerEntry{
		Date:          date,
		DebitAccount:  tbl.Value(i, "debit_account"),
		CreditAccount: tbl.Value(i, "credit_account"),
		Value:         value,
		Description:   tbl.Value(i, "description"),
	}, nil
}

// ParseDate parses a text date or an Excel serial date. An empty string
// yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

var (
	// 1,234.56
	pointDecimal = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+\.\d+$`)
	// 1.234,56 or 12,5
	commaDecimal = regexp.MustCompile(`^-?(\d{1,3}(\.\d{3})+|\d+),\d{1,2}$`)
)

// ParseValue parses a decimal amount. Both "1,234.56" and "1.234,56" are
// accepted; a comma that cannot be read unambiguously is an error.
func ParseValue(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("value is empty")
	}
	if strings.Contains(s, ",") {
		switch {
		case pointDecimal.MatchString(s):
			s = strings.ReplaceAll(s, ",", "")
		case commaDecimal.MatchString(s):
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		default:
			return decimal.Decimal{}, fmt.Errorf("ambiguous amount %q", s)
		}
	}
	return decimal.NewFromString(s)
}
