// Package apperrors defines the failures that abort a reconciliation run.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrSchema indicates that a chart or ledger is empty or lacks required columns.
var ErrSchema = errors.New("schema error")

// ErrParse indicates a malformed date or non-numeric value.
var ErrParse = errors.New("parse error")

// ErrMissingChart indicates that no chart of accounts is registered for a tenant.
var ErrMissingChart = errors.New("chart of accounts not found")

// SchemaError describes a structural problem in an input table.
type SchemaError struct {
	Source  string // "chart", "ledger", ...
	Missing []string
	Detail  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing required columns %v", e.Source, e.Missing)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Detail)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ParseError describes a cell that could not be converted.
type ParseError struct {
	Source string
	Row    int // 1-based, header is row 1
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s row %d: parsing %s %q", e.Source, e.Row, e.Field, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// MissingChartError is returned when a tenant has neither a cached
// classification nor a registered chart.
type MissingChartError struct {
	Tenant string
}

func (e *MissingChartError) Error() string {
	return fmt.Sprintf("chart of accounts not found for tenant %q", e.Tenant)
}

func (e *MissingChartError) Is(target error) bool { return target == ErrMissingChart }
