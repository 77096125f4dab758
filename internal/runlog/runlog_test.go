package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/recon/internal/model"
	"github.com/cleared-dev/recon/internal/reconcile"
)

var testTime = time.Date(2025, 4, 2, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:   testTime,
		RunID:       uuid.MustParse("0b9b6d3e-4d7a-4f0e-9c55-2c1f3f1d2a10"),
		Tenant:      "acme",
		WindowStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Entries:     5,
		Legs:        10,
		Pairs:       3,
		Output:      "results/reconciliation_2025-03_0b9b6d3e.xlsx",
	}
}

func TestAppend_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acme", "runs.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), Header+"\n"))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])
}

func TestAppend_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	e2 := testEntry()
	e2.RunID = uuid.New()
	e2.Pairs = 0
	require.NoError(t, Append(path, []Entry{e2}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Pairs)
	assert.Equal(t, e2.RunID, entries[1].RunID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,"))
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "runs.csv"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	bad := Header + "\nnot-a-time,x,acme,2025-03-01,2025-04-01,1,2,0,\n"
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := Read(path)
	assert.ErrorContains(t, err, "row 2: parsing timestamp")
}

func TestUnmarshalEntry_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"a", "b"})
	assert.ErrorContains(t, err, "expected 9 fields")
}

func TestFromResult(t *testing.T) {
	res := &reconcile.Result{
		RunID:   uuid.New(),
		Tenant:  "acme",
		Window:  model.Window{Start: testEntry().WindowStart, End: testEntry().WindowEnd},
		Entries: 1,
		Legs:    make([]model.Leg, 2),
		Pairs:   0,
	}
	local := testTime.In(time.FixedZone("BRT", -3*3600))
	e := FromResult(res, "out.csv", local)
	assert.Equal(t, testTime, e.Timestamp)
	assert.Equal(t, res.RunID, e.RunID)
	assert.Equal(t, 2, e.Legs)
	assert.Equal(t, "out.csv", e.Output)
}
