package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/recon/internal/model"
)

// unmatchedStatus gives the status of an unmatched leg by class.
// Classes not listed are OTHER.
var unmatchedStatus = map[class]model.Status{
	{model.AccountTypeRevenue, model.Credit}: model.StatusOpenInvoice,
	{model.AccountTypeClient, model.Debit}:   model.StatusOpenInvoice,
	{model.AccountTypeClient, model.Credit}:  model.StatusReceivedWithoutInvoice,
	{model.AccountTypeTreasury, model.Debit}: model.StatusReceivedWithoutInvoice,
}

// StatusOf returns the final status of a leg.
func StatusOf(l model.Leg) model.Status {
	if l.Matched() {
		return model.StatusMatched
	}
	if s, ok := unmatchedStatus[class{l.AccountType, l.Direction}]; ok {
		return s
	}
	return model.StatusOther
}

// Resolve assigns a status to every leg.
func Resolve(legs []model.Leg) {
	for i := range legs {
		legs[i].Status = StatusOf(legs[i])
	}
}

// StatusTotal aggregates the legs that share a status.
type StatusTotal struct {
	Status model.Status
	Legs   int
	Total  decimal.Decimal // sum of absolute values
}

// Summarize totals legs per status, in model.Statuses order.
func Summarize(legs []model.Leg) []StatusTotal {
	byStatus := make(map[model.Status]*StatusTotal, len(model.Statuses))
	out := make([]StatusTotal, len(model.Statuses))
	for i, s := range model.Statuses {
		out[i] = StatusTotal{Status: s, Total: decimal.Zero}
		byStatus[s] = &out[i]
	}
	for _, l := range legs {
		st, ok := byStatus[l.Status]
		if !ok {
			continue
		}
		st.Legs++
		st.Total = st.Total.Add(l.AbsValue)
	}
	return out
}
