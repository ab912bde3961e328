// Package targets reads the unit-of-work list: one (university, sport, URL,
// optional staff directory URL) row per extraction target.
package targets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"coachmail/internal/sportmatch"
)

// Target is one immutable unit of work. Created per input row, consumed once
// by the pipeline, discarded.
type Target struct {
	University        string
	Sport             string
	URL               string
	StaffDirectoryURL string
}

// Required input columns, after header normalization.
var requiredColumns = []string{"university", "sport", "url"}

const directoryColumn = "staff_directory_url"

// ReadCSV parses targets from CSV.
//
// Header handling: a UTF-8 BOM on the first header cell is stripped, headers
// are trimmed and normalized to lowercase with spaces as underscores, so
// "Staff Directory URL" maps to staff_directory_url.
//
// Rows missing any required field are skipped, not fatal. Sport strings are
// canonicalized when recognized ("WBB" becomes "Women's Basketball");
// unrecognized sports keep the raw value.
//
// Errors:
//   - missing required columns or an unreadable header;
//   - zero valid rows after skipping.
//
// Both are reported before any network activity can start. maxRows > 0 caps
// the result, preserving input order.
func ReadCSV(r io.Reader, maxRows int) ([]Target, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		colIdx[h] = i
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := colIdx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("input is missing required columns: %s (optional: %s)",
			strings.Join(missing, ", "), directoryColumn)
	}

	field := func(rec []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []Target
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is skipped like an incomplete one.
			continue
		}

		t := Target{
			University:        field(rec, "university"),
			Sport:             field(rec, "sport"),
			URL:               field(rec, "url"),
			StaffDirectoryURL: field(rec, directoryColumn),
		}
		if t.University == "" || t.Sport == "" || t.URL == "" {
			continue
		}

		if canon := sportmatch.Resolve(t.Sport); canon != "" {
			t.Sport = canon
		}

		out = append(out, t)
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid rows found in input")
	}
	return out, nil
}
