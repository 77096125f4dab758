package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  model.Window
	}{
		{"2025-03", model.Window{Start: date(2025, 3, 1), End: date(2025, 4, 1)}},
		{"2025-12", model.Window{Start: date(2025, 12, 1), End: date(2026, 1, 1)}},
		{"2024-02", model.Window{Start: date(2024, 2, 1), End: date(2024, 3, 1)}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParse_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"2025",
		"2025-13",
		"2025-03-01",
		"03-2025",
	}
	for _, input := range badInputs {
		_, err := Parse(input)
		assert.Error(t, err, "input: %q", input)
	}
}

func TestRange(t *testing.T) {
	got, err := Range("2025-01-01", "2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, model.Window{Start: date(2025, 1, 1), End: date(2025, 12, 1)}, got)
	assert.True(t, got.Contains(date(2025, 11, 30)))
	assert.False(t, got.Contains(date(2025, 12, 1)))
}

func TestRange_Errors(t *testing.T) {
	tests := []struct {
		from, to string
		contains string
	}{
		{"2025-1-1", "2025-12-01", "invalid start date"},
		{"2025-01-01", "tomorrow", "invalid end date"},
		{"2025-03-01", "2025-03-01", "must be before"},
		{"2025-04-01", "2025-03-01", "must be before"},
	}
	for _, tt := range tests {
		_, err := Range(tt.from, tt.to)
		assert.ErrorContains(t, err, tt.contains)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		w    model.Window
		want string
	}{
		{model.Window{Start: date(2025, 3, 1), End: date(2025, 4, 1)}, "2025-03"},
		{model.Window{Start: date(2025, 12, 1), End: date(2026, 1, 1)}, "2025-12"},
		{model.Window{Start: date(2025, 1, 1), End: date(2025, 12, 1)}, "2025-01-01_2025-12-01"},
		{model.Window{Start: date(2025, 3, 2), End: date(2025, 4, 2)}, "2025-03-02_2025-04-02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.w))
	}
}
