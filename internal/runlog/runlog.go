// Package runlog keeps a CSV history of reconciliation runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/recon/internal/reconcile"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp   time.Time
	RunID       uuid.UUID
	Tenant      string
	WindowStart time.Time
	WindowEnd   time.Time
	Entries     int
	Legs        int
	Pairs       int
	Output      string
}

// Header is the CSV header for runs.csv.
const Header = "timestamp,run_id,tenant,window_start,window_end,entries,legs,pairs,output"

const (
	numFields      = 9
	colTimestamp   = 0
	colRunID       = 1
	colTenant      = 2
	colWindowStart = 3
	colWindowEnd   = 4
	colEntries     = 5
	colLegs        = 6
	colPairs       = 7
	colOutput      = 8
)

// FromResult builds the log entry of a finished run.
func FromResult(res *reconcile.Result, output string, at time.Time) Entry {
	return Entry{
		Timestamp:   at.UTC(),
		RunID:       res.RunID,
		Tenant:      res.Tenant,
		WindowStart: res.Window.Start,
		WindowEnd:   res.Window.End,
		Entries:     res.Entries,
		Legs:        len(res.Legs),
		Pairs:       res.Pairs,
		Output:      output,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID.String()
	row[colTenant] = e.Tenant
	row[colWindowStart] = e.WindowStart.Format(time.DateOnly)
	row[colWindowEnd] = e.WindowEnd.Format(time.DateOnly)
	row[colEntries] = strconv.Itoa(e.Entries)
	row[colLegs] = strconv.Itoa(e.Legs)
	row[colPairs] = strconv.Itoa(e.Pairs)
	row[colOutput] = e.Output
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	id, err := uuid.Parse(record[colRunID])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing run id %q: %w", record[colRunID], err)
	}
	start, err := time.Parse(time.DateOnly, record[colWindowStart])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing window start %q: %w", record[colWindowStart], err)
	}
	end, err := time.Parse(time.DateOnly, record[colWindowEnd])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing window end %q: %w", record[colWindowEnd], err)
	}

	counts := make([]int, 3)
	for i, col := range []int{colEntries, colLegs, colPairs} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp:   ts,
		RunID:       id,
		Tenant:      record[colTenant],
		WindowStart: start,
		WindowEnd:   end,
		Entries:     counts[0],
		Legs:        counts[1],
		Pairs:       counts[2],
		Output:      record[colOutput],
	}, nil
}

// Append writes entries to path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries in path, or none if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
