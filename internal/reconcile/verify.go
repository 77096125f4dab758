package reconcile

import (
	"fmt"

	"github.com/cleared-dev/recon/internal/model"
)

// InvariantError describes a single post-run invariant violation.
type InvariantError struct {
	Invariant string
	Leg       int // Leg.Index, -1 when not tied to one leg
	Detail    string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("%s [leg %d]: %s", e.Invariant, e.Leg, e.Detail)
}

// CheckLegs verifies the shape of a finished run:
//   - every leg has one of the fixed statuses, MATCHED iff it has a match id;
//   - every match id is shared by exactly two legs with equal value and tag;
//   - match ids increase with the position of the leg that opened the match.
func CheckLegs(legs []model.Leg) []InvariantError {
	var errs []InvariantError

	pairs := make(map[int][]model.Leg)
	openers := make(map[int]int)
	for pos, l := range legs {
		valid := false
		for _, s := range model.Statuses {
			if l.Status == s {
				valid = true
				break
			}
		}
		if !valid {
			errs = append(errs, InvariantError{Invariant: "status", Leg: l.Index, Detail: fmt.Sprintf("unknown status %q", l.Status)})
		}
		if l.Matched() != (l.Status == model.StatusMatched) {
			errs = append(errs, InvariantError{Invariant: "status", Leg: l.Index, Detail: fmt.Sprintf("status %s with match id %d", l.Status, l.MatchID)})
		}

		if !l.Matched() {
			continue
		}
		if _, opens := counterparts[class{l.AccountType, l.Direction}]; opens {
			openers[l.MatchID] = pos
		}
		pairs[l.MatchID] = append(pairs[l.MatchID], l)
	}

	prev := -1
	for id := 1; id <= len(pairs); id++ {
		pos, ok := openers[id]
		if !ok {
			continue
		}
		if pos <= prev {
			errs = append(errs, InvariantError{Invariant: "match-order", Leg: legs[pos].Index, Detail: fmt.Sprintf("match id %d opened before match id %d", id, id-1)})
		}
		prev = pos
	}

	for id := 1; id <= len(pairs); id++ {
		p, ok := pairs[id]
		if !ok {
			errs = append(errs, InvariantError{Invariant: "match-pair", Leg: -1, Detail: fmt.Sprintf("match id %d unused", id)})
			continue
		}
		if len(p) != 2 {
			errs = append(errs, InvariantError{Invariant: "match-pair", Leg: p[0].Index, Detail: fmt.Sprintf("match id %d used by %d legs", id, len(p))})
			continue
		}
		if !p[0].AbsValue.Equal(p[1].AbsValue) || p[0].ClientTag != p[1].ClientTag {
			errs = append(errs, InvariantError{Invariant: "match-pair", Leg: p[0].Index, Detail: fmt.Sprintf("match id %d pairs different value or client", id)})
		}
	}

	return errs
}
