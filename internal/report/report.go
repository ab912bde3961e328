// Package report renders run results: the semicolon-delimited CSV consumed
// downstream, and an optional human-readable summary table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Row is one finished target, in input order.
type Row struct {
	University string
	Emails     []string

	// Err is set only when no extraction stage could proceed for the
	// target. A target that ran but found nothing has Err nil and Emails
	// empty.
	Err error
}

// WriteCSV writes rows as `university;emails`. The semicolon delimiter keeps
// the comma free for the email join inside the second column. Failed targets
// carry an `ERROR: <message>` cell instead of emails; empty results an empty
// cell. Input order is preserved.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write([]string{"university", "emails"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		cell := strings.Join(r.Emails, ", ")
		if r.Err != nil {
			cell = "ERROR: " + r.Err.Error()
		}
		if err := cw.Write([]string{r.University, cell}); err != nil {
			return fmt.Errorf("write row %q: %w", r.University, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary renders a run summary table to w: one line per target plus a
// totals footer. Meant for a terminal, never parsed.
func WriteSummary(w io.Writer, rows []Row) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"university", "emails", "status"})

	var totalEmails, failed int
	for _, r := range rows {
		status := "ok"
		switch {
		case r.Err != nil:
			status = "error: " + r.Err.Error()
			failed++
		case len(r.Emails) == 0:
			status = "none found"
		}
		totalEmails += len(r.Emails)
		t.AppendRow(table.Row{r.University, len(r.Emails), status})
	}
	t.AppendFooter(table.Row{
		strconv.Itoa(len(rows)) + " targets",
		totalEmails,
		strconv.Itoa(failed) + " failed",
	})
	t.Render()
}
