// Command coachmail extracts coaching-staff emails for a CSV of
// (university, sport, URL) targets and writes a semicolon-delimited report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"coachmail/internal/fetch"
	"coachmail/internal/metrics"
	"coachmail/internal/metrics/datadog"
	"coachmail/internal/pipeline"
	"coachmail/internal/report"
	sqlitesink "coachmail/internal/storage/sqlite"
	"coachmail/internal/targets"
)

// backendCloser is the minimal interface this command needs from a metrics
// backend.
type backendCloser interface {
	metrics.Backend
	Close() error
}

// deps are external seams for testability.
//
// When to use:
//   - Unit tests: inject a fake fetcher and backend factory, capture output.
//   - Alternate runtimes: swap the HTTP session or metrics backend.
type deps struct {
	Stdout io.Writer
	Stderr io.Writer

	NewFetcher     func(timeout time.Duration) pipeline.Fetcher
	BackendFactory func(ctx context.Context, tags []string, flushEvery time.Duration) (backendCloser, error)
	Now            func() time.Time
	Sleep          func(d time.Duration)
}

// runConfig holds the parsed flags for a run.
type runConfig struct {
	InFile  string
	OutFile string

	Pause    time.Duration
	BioPause time.Duration
	Timeout  time.Duration

	MaxRows int
	MaxBios int

	SQLiteDSN      string
	MetricsBackend string
	DDTagsCSV      string
	FlushEvery     time.Duration

	Pretty  bool
	Verbose bool
}

// main is intentionally small: it wires real dependencies and exits with a code.
func main() {
	code := run(context.Background(), os.Args[1:], deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewFetcher: func(timeout time.Duration) pipeline.Fetcher {
			return fetch.NewSession(timeout)
		},
		BackendFactory: func(ctx context.Context, tags []string, flushEvery time.Duration) (backendCloser, error) {
			return datadog.NewBackend(ctx, datadog.Options{
				Tags:       tags,
				FlushEvery: flushEvery,
			})
		},
		Now:   time.Now,
		Sleep: time.Sleep,
	})
	os.Exit(code)
}

// run executes the extraction batch and returns an exit code.
//
// Exit codes:
//   - 0: every target resolved (found emails or cleanly found none).
//   - 1: at least one target ended with an error marker, or the report
//     could not be written.
//   - 2: configuration/input error, before any network activity.
func run(ctx context.Context, args []string, d deps) int {
	if d.Stdout == nil {
		d.Stdout = io.Discard
	}
	if d.Stderr == nil {
		d.Stderr = io.Discard
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Sleep == nil {
		d.Sleep = time.Sleep
	}
	if d.NewFetcher == nil {
		fmt.Fprintln(d.Stderr, "internal error: NewFetcher is nil")
		return 2
	}

	cfg, err := parseFlags(args)
	if err != nil {
		fmt.Fprintln(d.Stderr, err.Error())
		return 2
	}

	logger := log.New(d.Stderr, "", log.LstdFlags)
	verbosef := func(format string, v ...any) {}
	if cfg.Verbose {
		verbosef = logger.Printf
	}

	// Input problems are fatal before any fetch happens.
	in, err := os.Open(cfg.InFile)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error opening input: %v\n", err)
		return 2
	}
	tgts, err := targets.ReadCSV(in, cfg.MaxRows)
	_ = in.Close()
	if err != nil {
		fmt.Fprintf(d.Stderr, "error reading targets: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsBackend == "datadog" {
		if d.BackendFactory == nil {
			fmt.Fprintln(d.Stderr, "internal error: BackendFactory is nil")
			return 2
		}
		tags := append(datadog.ParseTagsCSV(cfg.DDTagsCSV), "tool:coachmail")
		backend, err := d.BackendFactory(ctx, tags, cfg.FlushEvery)
		if err != nil {
			fmt.Fprintf(d.Stderr, "datadog backend init failed: %v\n", err)
			return 2
		}
		metrics.SetBackend(backend)
		defer func() {
			_ = metrics.Flush()
			_ = backend.Close()
		}()
	}

	var sink *sqlitesink.Sink
	if cfg.SQLiteDSN != "" {
		sink, err = sqlitesink.Open(ctx, cfg.SQLiteDSN, d.Now())
		if err != nil {
			fmt.Fprintf(d.Stderr, "error opening sqlite sink: %v\n", err)
			return 2
		}
		defer func() { _ = sink.Close() }()
	}

	p := pipeline.New(d.NewFetcher(cfg.Timeout), pipeline.Options{
		MaxBioPages: cfg.MaxBios,
		BioPause:    cfg.BioPause,
		Sleep:       d.Sleep,
		Logf:        verbosef,
	})

	logger.Printf("processing %d target(s)", len(tgts))

	rows := make([]report.Row, 0, len(tgts))
	failed := 0
	for i, t := range tgts {
		if i > 0 {
			d.Sleep(cfg.Pause)
		}

		emails, err := p.Resolve(ctx, t)
		row := report.Row{University: t.University, Emails: emails, Err: err}
		rows = append(rows, row)

		status := "ok"
		if err != nil {
			status = "error"
			failed++
			logger.Printf("%s (%s): %v", t.University, t.Sport, err)
		} else {
			verbosef("%s (%s): %d email(s)", t.University, t.Sport, len(emails))
		}
		metrics.IncCounter("coachmail_targets_total", 1, metrics.Labels{"status": status})
		metrics.IncCounter("coachmail_emails_total", float64(len(emails)), nil)
		metrics.ObserveHistogram("coachmail_emails_per_target", float64(len(emails)), nil)

		if sink != nil {
			if serr := sink.Insert(ctx, sqlitesink.Result{
				University: t.University,
				Sport:      t.Sport,
				URL:        t.URL,
				Emails:     emails,
				Err:        err,
			}); serr != nil {
				logger.Printf("sqlite sink: %v", serr)
			}
		}
	}

	if err := writeReport(cfg.OutFile, d.Stdout, rows); err != nil {
		fmt.Fprintf(d.Stderr, "error writing report: %v\n", err)
		return 1
	}
	if cfg.Pretty {
		report.WriteSummary(d.Stderr, rows)
	}

	_ = metrics.Flush()

	logger.Printf("done: %d target(s), %d failed", len(tgts), failed)
	if failed > 0 {
		return 1
	}
	return 0
}

// writeReport writes the CSV to path, or to stdout when path is "-".
func writeReport(path string, stdout io.Writer, rows []report.Row) error {
	if path == "-" {
		return report.WriteCSV(stdout, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// parseFlags parses command arguments into a validated runConfig.
//
// Errors:
//   - Returns an error for invalid/missing required flags.
//   - Does not exit the process (caller decides exit code).
func parseFlags(args []string) (runConfig, error) {
	fs := flag.NewFlagSet("coachmail", flag.ContinueOnError)

	var usageBuf strings.Builder
	fs.SetOutput(&usageBuf)
	fs.Usage = func() {
		fmt.Fprintf(&usageBuf, "Usage of %s:\n", fs.Name())
		fs.PrintDefaults()
	}

	var cfg runConfig
	fs.StringVar(&cfg.InFile, "in", "", "Path to targets CSV (university,sport,url[,staff_directory_url])")
	fs.StringVar(&cfg.OutFile, "out", "-", "Path for the report CSV (\"-\" for stdout)")
	fs.DurationVar(&cfg.Pause, "pause", 1200*time.Millisecond, "Pause between targets")
	fs.DurationVar(&cfg.BioPause, "bio-pause", 600*time.Millisecond, "Pause between bio page fetches")
	fs.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "HTTP timeout per request")
	fs.IntVar(&cfg.MaxRows, "max-rows", 0, "Process at most N input rows (0 means all)")
	fs.IntVar(&cfg.MaxBios, "max-bios", 30, "Max bio pages followed per listing page")
	fs.StringVar(&cfg.SQLiteDSN, "sqlite", "", "Optional SQLite file to append results to")
	fs.StringVar(&cfg.MetricsBackend, "metrics-backend", "none", "Metrics backend: none or datadog")
	fs.StringVar(&cfg.DDTagsCSV, "dd-tags", "", "Extra Datadog tags CSV (e.g. env:prod,service:coachmail)")
	fs.DurationVar(&cfg.FlushEvery, "metrics-flush", time.Minute, "Datadog flush interval")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Print a run summary table to stderr")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose per-stage logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return runConfig{}, errors.New(usageBuf.String())
		}
		return runConfig{}, fmt.Errorf("%v\n\n%s", err, usageBuf.String())
	}

	if cfg.InFile == "" {
		return runConfig{}, errors.New("missing required -in <targets.csv>")
	}
	if cfg.MaxRows < 0 {
		return runConfig{}, errors.New("-max-rows must be >= 0")
	}
	if cfg.MaxBios <= 0 {
		return runConfig{}, errors.New("-max-bios must be > 0")
	}
	switch cfg.MetricsBackend {
	case "none", "datadog":
	default:
		return runConfig{}, fmt.Errorf("unknown -metrics-backend %q (want none or datadog)", cfg.MetricsBackend)
	}

	return cfg, nil
}
