package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a leg.
type Direction string

const (
	Debit  Direction = "DEBIT"
	Credit Direction = "CREDIT"
)

// Status is the reconciliation outcome of a leg.
type Status string

const (
	StatusMatched                Status = "MATCHED"
	StatusOpenInvoice            Status = "OPEN_INVOICE"
	StatusReceivedWithoutInvoice Status = "RECEIVED_WITHOUT_INVOICE"
	StatusOther                  Status = "OTHER"
)

// Statuses lists every Status in report order.
var Statuses = []Status{
	StatusMatched,
	StatusOpenInvoice,
	StatusReceivedWithoutInvoice,
	StatusOther,
}

// ClientTag is the counterparty label derived from a ledger entry.
// The zero value is unset; unset tags only equal other unset tags.
type ClientTag struct {
	Name  string
	Valid bool
}

// Tag returns a set ClientTag.
func Tag(name string) ClientTag {
	return ClientTag{Name: name, Valid: true}
}

func (c ClientTag) String() string {
	if !c.Valid {
		return ""
	}
	return c.Name
}

// Leg is one directional half of an expanded ledger entry.
type Leg struct {
	Index       int // position in the expanded sequence, used for tie-breaks
	Date        time.Time
	AccountCode string
	AccountName string
	Direction   Direction
	SignedValue decimal.Decimal // debit negative, credit positive
	AbsValue    decimal.Decimal // rounded to 2 places
	ClientTag   ClientTag
	Description string
	AccountType AccountType
	MatchID     int // 0 = unmatched
	Status      Status
}

// Matched reports whether the leg has been paired.
func (l Leg) Matched() bool {
	return l.MatchID != 0
}
