// Package runlog keeps an append-only CSV history of backfill scan
// runs.
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
)

// Entry is one row in the scan run log.
type Entry struct {
	Timestamp time.Time
	UserID    string
	Matched   int
	Checked   int
	Note      string
}

// Header is the CSV header for scan-runs.csv.
const Header = "timestamp,user_id,matched,checked,note"

const (
	numFields    = 5
	logDir       = "logs"
	logFile      = "logs/scan-runs.csv"
	colTimestamp = 0
	colUserID    = 1
	colMatched   = 2
	colChecked   = 3
	colNote      = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colUserID] = e.UserID
	row[colMatched] = strconv.Itoa(e.Matched)
	row[colChecked] = strconv.Itoa(e.Checked)
	row[colNote] = e.Note
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
	matched, err := strconv.Atoi(record[colMatched])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing matched count %q: %w", record[colMatched], err)
	}
	checked, err := strconv.Atoi(record[colChecked])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing checked count %q: %w", record[colChecked], err)
	}

	return Entry{
		Timestamp: ts,
		UserID:    record[colUserID],
		Matched:   matched,
		Checked:   checked,
		Note:      record[colNote],
	}, nil
}

// Append writes entries to <root>/logs/scan-runs.csv, creating the
// file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening scan run log: %w", err)
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

// Read returns all entries from <root>/logs/scan-runs.csv. Returns an
// empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening scan run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading scan run log CSV: %w", err)
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
