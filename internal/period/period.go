// Package period turns user-facing period strings into reconciliation windows.
package period

import (
	"fmt"
	"time"

	"github.com/cleared-dev/recon/internal/model"
)

const monthLayout = "2006-01"

// Parse parses a month like "2025-03" into [2025-03-01, 2025-04-01).
func Parse(s string) (model.Window, error) {
	start, err := time.Parse(monthLayout, s)
	if err != nil {
		return model.Window{}, fmt.Errorf("invalid period %q (want YYYY-MM): %w", s, err)
	}
	return model.Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// Range parses explicit YYYY-MM-DD bounds. to is exclusive.
func Range(from, to string) (model.Window, error) {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return model.Window{}, fmt.Errorf("invalid start date %q (want YYYY-MM-DD): %w", from, err)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return model.Window{}, fmt.Errorf("invalid end date %q (want YYYY-MM-DD): %w", to, err)
	}
	if !start.Before(end) {
		return model.Window{}, fmt.Errorf("start date %s must be before end date %s", from, to)
	}
	return model.Window{Start: start, End: end}, nil
}

// Label names a window for file names: "2025-03" for a calendar month,
// "2025-01-01_2025-12-01" otherwise.
func Label(w model.Window) string {
	if w.Start.Day() == 1 && w.End.Equal(w.Start.AddDate(0, 1, 0)) {
		return w.Start.Format(monthLayout)
	}
	return w.Start.Format(time.DateOnly) + "_" + w.End.Format(time.DateOnly)
}
