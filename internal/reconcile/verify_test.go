package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/model"
)

func matchedPair(id int, abs string) []model.Leg {
	d := clientDebit(2*id, date(2025, 3, id), abs, "A")
	c := clientCredit(2*id+1, date(2025, 3, id), abs, "A")
	d.MatchID, c.MatchID = id, id
	d.Status, c.Status = model.StatusMatched, model.StatusMatched
	return []model.Leg{d, c}
}

func TestCheckLegs_Valid(t *testing.T) {
	legs := append(matchedPair(1, "10.00"), matchedPair(2, "20.00")...)
	assert.Empty(t, CheckLegs(legs))
}

func TestCheckLegs_Violations(t *testing.T) {
	tests := []struct {
		name      string
		legs      func() []model.Leg
		invariant string
	}{
		{
			name: "unknown status",
			legs: func() []model.Leg {
				l := clientDebit(0, date(2025, 3, 1), "1.00", "A")
				l.Status = "PENDING"
				return []model.Leg{l}
			},
			invariant: "status",
		},
		{
			name: "matched status without id",
			legs: func() []model.Leg {
				l := clientDebit(0, date(2025, 3, 1), "1.00", "A")
				l.Status = model.StatusMatched
				return []model.Leg{l}
			},
			invariant: "status",
		},
		{
			name: "pair with different values",
			legs: func() []model.Leg {
				legs := matchedPair(1, "10.00")
				legs[1].AbsValue = dec("11.00")
				return legs
			},
			invariant: "match-pair",
		},
		{
			name: "id used once",
			legs: func() []model.Leg {
				return matchedPair(1, "10.00")[:1]
			},
			invariant: "match-pair",
		},
		{
			name: "gap in ids",
			legs: func() []model.Leg {
				return append(matchedPair(1, "10.00"), matchedPair(3, "30.00")...)
			},
			invariant: "match-pair",
		},
		{
			name: "ids out of scan order",
			legs: func() []model.Leg {
				return append(matchedPair(2, "20.00"), matchedPair(1, "10.00")...)
			},
			invariant: "match-order",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := CheckLegs(tt.legs())
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.invariant, errs[0].Invariant)
		})
	}
}
