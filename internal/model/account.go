package model

import (
	"maps"
	"slices"
)

// AccountType is the semantic category the classifier assigns to an analytic account.
type AccountType string

const (
	AccountTypeClient   AccountType = "CLIENT"
	AccountTypeTreasury AccountType = "TREASURY"
	AccountTypeSupplier AccountType = "SUPPLIER"
	AccountTypeRevenue  AccountType = "REVENUE"
	AccountTypeExpense  AccountType = "EXPENSE"
	AccountTypeEquity   AccountType = "EQUITY"
	AccountTypeOther    AccountType = "OTHER"
)

// AccountTypes lists every valid AccountType.
var AccountTypes = []AccountType{
	AccountTypeClient,
	AccountTypeTreasury,
	AccountTypeSupplier,
	AccountTypeRevenue,
	AccountTypeExpense,
	AccountTypeEquity,
	AccountTypeOther,
}

// Valid reports whether t is one of the fixed account types.
func (t AccountType) Valid() bool {
	return slices.Contains(AccountTypes, t)
}

// Group is the top-level chart group (1 = asset ... 5 = equity).
type Group int

const (
	GroupAsset     Group = 1
	GroupLiability Group = 2
	GroupRevenue   Group = 3
	GroupExpense   Group = 4
	GroupEquity    Group = 5
)

// ChartAccount is one node of a tenant's chart of accounts.
type ChartAccount struct {
	Code        string // hierarchical, e.g. "1.1.2.01" or "112001"
	ReducedCode string // lookup key used by ledger rows
	Description string
	Group       Group
	IsAnalytic  bool // leaf, postable account
}

// ClassificationMap maps a reduced code to its account type.
// Codes missing from the map are AccountTypeOther.
type ClassificationMap map[string]AccountType

// TypeOf returns the account type for a reduced code.
func (m ClassificationMap) TypeOf(reducedCode string) AccountType {
	if t, ok := m[reducedCode]; ok {
		return t
	}
	return AccountTypeOther
}

// Clone returns an independent copy of m.
func (m ClassificationMap) Clone() ClassificationMap {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Count returns how many codes carry type t.
func (m ClassificationMap) Count(t AccountType) int {
	n := 0
	for _, v := range m {
		if v == t {
			n++
		}
	}
	return n
}
