package journal

import (
	"strings"
	"unicode"

	"github.com/cleared-dev/recon/internal/model"
)

// Filter keeps the entries whose date falls in w, preserving order.
func Filter(entries []model.LedgerEntry, w model.Window) []model.LedgerEntry {
	var out []model.LedgerEntry
	for _, e := range entries {
		if w.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// ClientTagOf derives the counterparty of an entry from the debit account,
// falling back to the credit account.
func ClientTagOf(e model.LedgerEntry) model.ClientTag {
	if tag, ok := tagFromAccount(e.DebitAccount); ok {
		return tag
	}
	if tag, ok := tagFromAccount(e.CreditAccount); ok {
		return tag
	}
	return model.ClientTag{}
}

func tagFromAccount(account string) (model.ClientTag, bool) {
	_, after, found := strings.Cut(account, "-")
	if !found {
		return model.ClientTag{}, false
	}
	return model.Tag(strings.ToUpper(strings.TrimSpace(after))), true
}

// SplitAccount splits "<code> - <name>" into its leading digits and the
// text after the first hyphen. Either part may be empty.
func SplitAccount(account string) (code, name string) {
	end := strings.IndexFunc(account, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(account)
	}
	code = account[:end]

	if _, after, found := strings.Cut(account, "-"); found {
		name = strings.TrimLeftFunc(after, unicode.IsSpace)
	}
	return code, name
}

// Expand turns each entry into a debit leg and a credit leg. The debit legs
// of all entries come first, then the credit legs, each group in entry
// order; Leg.Index records that position.
func Expand(entries []model.LedgerEntry) []model.Leg {
	legs := make([]model.Leg, 0, 2*len(entries))
	tags := make([]model.ClientTag, len(entries))
	for i, e := range entries {
		tags[i] = ClientTagOf(e)
	}

	for i, e := range entries {
		legs = append(legs, newLeg(e, e.DebitAccount, model.Debit, tags[i]))
	}
	for i, e := range entries {
		legs = append(legs, newLeg(e, e.CreditAccount, model.Credit, tags[i]))
	}
	for i := range legs {
		legs[i].Index = i
	}
	return legs
}

func newLeg(e model.LedgerEntry, account string, dir model.Direction, tag model.ClientTag) model.Leg {
	code, name := SplitAccount(account)
	signed := e.Value
	if dir == model.Debit {
		signed = e.Value.Neg()
	}
	return model.Leg{
		Date:        e.Date,
		AccountCode: code,
		AccountName: name,
		Direction:   dir,
		SignedValue: signed,
		AbsValue:    e.Value.Abs().RoundBank(2),
		ClientTag:   tag,
		Description: e.Description,
		AccountType: model.AccountTypeOther,
	}
}
