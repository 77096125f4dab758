package reconcile

import (
	"slices"

	"github.com/cleared-dev/recon/internal/model"
)

// class is an (account type, direction) pair.
type class struct {
	Type      model.AccountType
	Direction model.Direction
}

// counterparts maps the class of a leg that opens a match to the class of
// the leg that closes it: an invoiced revenue is settled by a treasury
// debit, a client charge by a client credit.
var counterparts = map[class]class{
	{model.AccountTypeRevenue, model.Credit}: {model.AccountTypeTreasury, model.Debit},
	{model.AccountTypeClient, model.Debit}:   {model.AccountTypeClient, model.Credit},
}

type bucketKey struct {
	class
	Abs string
	Tag model.ClientTag
}

// bucket holds candidate positions in scan order. Entries before head are
// matched or dated before every leg still to be scanned.
type bucket struct {
	positions []int
	head      int
}

// Match sorts legs by date (stable, so equal dates keep their Index order)
// and greedily pairs each opening leg with the first eligible closing leg:
// same counterpart class, same absolute value, same client tag, and a date
// on or after the opening leg. Match ids start at 1. It returns the number
// of pairs. legs must already carry their AccountType.
func Match(legs []model.Leg) int {
	slices.SortStableFunc(legs, func(a, b model.Leg) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.Index - b.Index
	})

	buckets := make(map[bucketKey]*bucket)
	for pos, l := range legs {
		key := keyOf(l, class{l.AccountType, l.Direction})
		if !isCounterpart(key.class) {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.positions = append(b.positions, pos)
	}

	nextID := 1
	for pos := range legs {
		l := &legs[pos]
		if l.Matched() {
			continue
		}
		want, ok := counterparts[class{l.AccountType, l.Direction}]
		if !ok {
			continue
		}
		b, ok := buckets[keyOf(*l, want)]
		if !ok {
			continue
		}

		for b.head < len(b.positions) {
			c := &legs[b.positions[b.head]]
			if c.Matched() || c.Date.Before(l.Date) {
				b.head++
				continue
			}
			break
		}
		if b.head == len(b.positions) {
			continue
		}

		c := &legs[b.positions[b.head]]
		b.head++
		l.MatchID = nextID
		c.MatchID = nextID
		nextID++
	}
	return nextID - 1
}

func keyOf(l model.Leg, c class) bucketKey {
	return bucketKey{class: c, Abs: l.AbsValue.StringFixed(2), Tag: l.ClientTag}
}

func isCounterpart(c class) bool {
	for _, v := range counterparts {
		if v == c {
			return true
		}
	}
	return false
}

// Stamp sets each leg's AccountType from m by account code.
func Stamp(legs []model.Leg, m model.ClassificationMap) {
	for i := range legs {
		legs[i].AccountType = m.TypeOf(legs[i].AccountCode)
	}
}
