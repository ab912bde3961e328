package report

import (
	"errors"
	"strings"
	"testing"
)

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{University: "State U", Emails: []string{"a@stateu.edu", "B@stateu.edu"}},
		{University: "Tech College"},
		{University: "Coastal U", Err: errors.New("GET https://coastal.edu/wbb: status 500")},
	}

	var b strings.Builder
	if err := WriteCSV(&b, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines: %q", len(lines), b.String())
	}
	if lines[0] != "university;emails" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "State U;a@stateu.edu, B@stateu.edu" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "Tech College;" {
		t.Fatalf("empty result row = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Coastal U;ERROR: ") {
		t.Fatalf("error row = %q", lines[3])
	}
}

func TestWriteCSV_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{University: "Zed U"},
		{University: "Alpha U"},
	}

	var b strings.Builder
	if err := WriteCSV(&b, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if strings.Index(b.String(), "Zed U") > strings.Index(b.String(), "Alpha U") {
		t.Fatalf("input order not preserved:\n%s", b.String())
	}
}

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{University: "State U", Emails: []string{"a@stateu.edu"}},
		{University: "Coastal U", Err: errors.New("boom")},
	}

	var b strings.Builder
	WriteSummary(&b, rows)

	out := b.String()
	for _, want := range []string{"State U", "Coastal U", "error: boom", "2 targets", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}
