package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cleared-dev/recon/internal/apperrors"
	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/tabular"
)

const (
	numFields   = 5
	colCode     = 0
	colReduced  = 1
	colDesc     = 2
	colGroup    = 3
	colAnalytic = 4

	sourceChart = "chart"
)

// Header is the CSV header of a stored chart-of-accounts.csv.
var Header = []string{"account_code", "reduced_code", "description", "group", "is_analytic"}

// Columns accepts both the stored header and the labels used by
// Brazilian bookkeeping exports.
var Columns = []tabular.Column{
	{Name: "account_code", Aliases: []string{"Conta", "code"}, Required: true},
	{Name: "reduced_code", Aliases: []string{"Código Reduzido", "Cod Reduzido", "reduced"}, Required: true},
	{Name: "description", Aliases: []string{"Descrição", "Descricao Conta"}, Required: true},
	{Name: "group", Aliases: []string{"Grupo Conta", "Grupo"}, Required: true},
	{Name: "is_analytic", Aliases: []string{"Analítica", "analytic"}, Required: true},
}

// ReadChart reads a chart of accounts in CSV or XLSX form.
// It fails with a SchemaError when columns are missing or the chart is empty,
// and with a ParseError on a bad group or analytic flag.
func ReadChart(r io.Reader, format tabular.Format) ([]model.ChartAccount, error) {
	rows, err := tabular.ReadRows(r, format)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}

	tbl, err := tabular.NewTable(sourceChart, rows, Columns)
	if err != nil {
		return nil, err
	}

	chart := make([]model.ChartAccount, 0, tbl.Len())
	for i := 0; i < tbl.Len(); i++ {
		acct, err := UnmarshalAccount(tbl, i)
		if err != nil {
			return nil, err
		}
		chart = append(chart, acct)
	}
	return chart, nil
}

// WriteChart writes chart-of-accounts.csv.
func WriteChart(w io.Writer, chart []model.ChartAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range chart {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts a ChartAccount to a CSV row.
func MarshalAccount(acct model.ChartAccount) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colReduced] = acct.ReducedCode
	row[colDesc] = acct.Description
	row[colGroup] = strconv.Itoa(int(acct.Group))
	row[colAnalytic] = strconv.FormatBool(acct.IsAnalytic)
	return row
}

// UnmarshalAccount converts data row i of a chart table to a ChartAccount.
func UnmarshalAccount(tbl *tabular.Table, i int) (model.ChartAccount, error) {
	rawGroup := tbl.Value(i, "group")
	group, err := parseGroup(rawGroup)
	if err != nil {
		return model.ChartAccount{}, &apperrors.ParseError{Source: sourceChart, Row: tbl.Line(i), Field: "group", Value: rawGroup, Err: err}
	}

	rawAnalytic := tbl.Value(i, "is_analytic")
	analytic, err := parseFlag(rawAnalytic)
	if err != nil {
		return model.ChartAccount{}, &apperrors.ParseError{Source: sourceChart, Row: tbl.Line(i), Field: "is_analytic", Value: rawAnalytic, Err: err}
	}

	return model.ChartAccount{
		Code:        tbl.Value(i, "account_code"),
		ReducedCode: tbl.Value(i, "reduced_code"),
		Description: tbl.Value(i, "description"),
		Group:       group,
		IsAnalytic:  analytic,
	}, nil
}

func parseGroup(s string) (model.Group, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheets sometimes store small integers as "1.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("group must be an integer")
		}
		n = int(f)
	}
	if n < int(model.GroupAsset) || n > int(model.GroupEquity) {
		return 0, fmt.Errorf("group must be between 1 and 5")
	}
	return model.Group(n), nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "TRUE", "T", "1", "S", "SIM", "Y", "YES", "VERDADEIRO":
		return true, nil
	case "FALSE", "F", "0", "N", "NAO", "NÃO", "NO", "FALSO":
		return false, nil
	default:
		return false, fmt.Errorf("expected a boolean")
	}
}
