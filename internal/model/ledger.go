package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one raw double-entry row as exported by the bookkeeping system.
type LedgerEntry struct {
	Date          time.Time
	DebitAccount  string          // "<code> - <name>"
	CreditAccount string          // "<code> - <name>"
	Value         decimal.Decimal // positive
	Description   string
}

// Window is a half-open date range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
