package datadog

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"coachmail/internal/metrics"
)

// fakeSubmitter records submitted payloads instead of doing HTTP.
type fakeSubmitter struct {
	payloads []datadogV2.MetricPayload
}

func (f *fakeSubmitter) SubmitMetrics(_ context.Context, body datadogV2.MetricPayload, _ ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, nil
}

func newTestBackend(t *testing.T) (*Backend, *fakeSubmitter) {
	t.Helper()

	fake := &fakeSubmitter{}
	b, err := NewBackend(context.Background(), Options{
		JobName:    "test",
		FlushEvery: time.Hour, // keep the ticker out of the way
		now:        func() time.Time { return time.Unix(1700000000, 0) },
		submitter:  fake,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b, fake
}

func metricNames(p datadogV2.MetricPayload) map[string]bool {
	names := make(map[string]bool)
	for _, s := range p.Series {
		names[s.Metric] = true
	}
	return names
}

func TestFlush_SubmitsBufferedCounters(t *testing.T) {
	t.Parallel()

	b, fake := newTestBackend(t)
	defer func() { _ = b.Close() }()

	b.IncCounter("coachmail_targets_total", 1, metrics.Labels{"status": "ok"})
	b.IncCounter("coachmail_pages_total", 3, metrics.Labels{"kind": "bio"})
	b.IncCounter("coachmail_emails_total", 5, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(fake.payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(fake.payloads))
	}

	names := metricNames(fake.payloads[0])
	for _, want := range []string{"coachmail.targets.total", "coachmail.pages.total", "coachmail.emails.total"} {
		if !names[want] {
			t.Fatalf("missing series %q in %v", want, names)
		}
	}
}

func TestFlush_EmptyBufferSubmitsNothing(t *testing.T) {
	t.Parallel()

	b, fake := newTestBackend(t)
	defer func() { _ = b.Close() }()

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(fake.payloads) != 0 {
		t.Fatalf("empty flush must not submit, got %d payloads", len(fake.payloads))
	}
}

func TestFlush_HistogramPercentiles(t *testing.T) {
	t.Parallel()

	b, fake := newTestBackend(t)
	defer func() { _ = b.Close() }()

	for _, v := range []float64{0.1, 0.2, 0.3, 1.5} {
		b.ObserveHistogram("coachmail_fetch_duration_seconds", v, metrics.Labels{"kind": "sport_page"})
	}

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	names := metricNames(fake.payloads[0])
	for _, suffix := range []string{".p50", ".p95", ".max", ".samples"} {
		if !names["coachmail.fetch.duration_seconds"+suffix] {
			t.Fatalf("missing percentile %q in %v", suffix, names)
		}
	}
}

func TestBuildSeries_Tags(t *testing.T) {
	t.Parallel()

	b, _ := newTestBackend(t)
	defer func() { _ = b.Close() }()

	s := snapshot{targetCounts: map[string]float64{"ok": 2}}
	series := b.buildSeries(s, 1700000000)

	if len(series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(series))
	}
	var hasJob, hasStatus bool
	for _, tag := range series[0].Tags {
		if tag == "job:test" {
			hasJob = true
		}
		if tag == "status:ok" {
			hasStatus = true
		}
	}
	if !hasJob || !hasStatus {
		t.Fatalf("missing tags in %v", series[0].Tags)
	}
}

func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	got := ParseTagsCSV(" env:prod , service:coachmail ,, ")
	if len(got) != 2 || got[0] != "env:prod" || got[1] != "service:coachmail" {
		t.Fatalf("ParseTagsCSV = %v", got)
	}
	if ParseTagsCSV("") != nil {
		t.Fatal("empty input must return nil")
	}
	if strings.Join(ParseTagsCSV("a:b"), "") != "a:b" {
		t.Fatal("single tag")
	}
}
