// Package datadog implements a Datadog backend for the internal/metrics
// facade.
//
// The backend buffers in memory and submits on a ticker (plus a final flush
// on Close) so that long batch runs produce an actual time series instead of
// one spike at process exit. Extraction goroutines only ever touch the
// lock-protected buffers; submission happens out of lock.
package datadog

import (
	"context"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"coachmail/internal/metrics"
)

// Options controls backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to
	// "coachmail".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls the submission interval. Defaults to 60s.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets these; tests use
	// them to avoid real clocks, tickers, and network submission.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal slice of the Datadog SDK the backend
// needs. Depending on the interface instead of *datadogV2.MetricsApi keeps
// unit tests free of real HTTP.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	targetCounts map[string]float64 // status -> count
	pageCounts   map[string]float64 // kind -> count
	fetchErrors  float64
	emailCount   float64

	fetchDur        map[string][]float64 // kind -> seconds
	emailsPerTarget []float64
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// NewBackend constructs a Datadog backend using the official client and
// starts its periodic flush loop.
//
// Edge cases:
//   - FlushEvery <= 0 defaults to 60s, empty JobName to "coachmail".
//   - Environment tag selection uses ENV then DD_ENV, otherwise env:unknown.
//   - Client construction does not hit the network; errors surface from
//     Flush().
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "coachmail"
	}

	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	submitter := opts.submitter
	if submitter == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		submitter = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:        submitter,
		ctx:        dd.NewDefaultContext(parent),
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,

		targetCounts: make(map[string]float64),
		pageCounts:   make(map[string]float64),
		fetchDur:     make(map[string][]float64),
	}

	go b.loop()
	return b, nil
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// Close stops the flush loop and performs one final Flush. Close once;
// a second Close panics (process-lifetime backend semantics).
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case "coachmail_targets_total":
		status := labels["status"]
		if status == "" {
			status = "unknown"
		}
		b.targetCounts[status] += delta

	case "coachmail_pages_total":
		kind := labels["kind"]
		if kind == "" {
			kind = "unknown"
		}
		b.pageCounts[kind] += delta

	case "coachmail_fetch_errors_total":
		b.fetchErrors += delta

	case "coachmail_emails_total":
		b.emailCount += delta

	default:
		// Unknown counters are dropped.
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch name {
	case "coachmail_fetch_duration_seconds":
		kind := labels["kind"]
		if kind == "" {
			kind = "unknown"
		}
		b.fetchDur[kind] = append(b.fetchDur[kind], value)

	case "coachmail_emails_per_target":
		b.emailsPerTarget = append(b.emailsPerTarget, value)

	default:
		// Unknown histograms are dropped.
	}
}

// snapshot holds detached buffered state, so Flush can build and submit the
// payload without holding the mutex.
type snapshot struct {
	targetCounts map[string]float64
	pageCounts   map[string]float64
	fetchErrors  float64
	emailCount   float64

	fetchDur        map[string][]float64
	emailsPerTarget []float64
}

func (b *Backend) snapshotAndReset() snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := snapshot{
		targetCounts:    b.targetCounts,
		pageCounts:      b.pageCounts,
		fetchErrors:     b.fetchErrors,
		emailCount:      b.emailCount,
		fetchDur:        b.fetchDur,
		emailsPerTarget: b.emailsPerTarget,
	}

	b.targetCounts = make(map[string]float64)
	b.pageCounts = make(map[string]float64)
	b.fetchErrors = 0
	b.emailCount = 0
	b.fetchDur = make(map[string][]float64)
	b.emailsPerTarget = nil

	return s
}

func (s snapshot) isEmpty() bool {
	return len(s.targetCounts) == 0 &&
		len(s.pageCounts) == 0 &&
		s.fetchErrors == 0 &&
		s.emailCount == 0 &&
		len(s.fetchDur) == 0 &&
		len(s.emailsPerTarget) == 0
}

// Flush submits buffered metrics and resets the buffers.
//
// Buffers reset even when submission fails: extraction speed wins over
// at-least-once delivery here.
func (b *Backend) Flush() error {
	snap := b.snapshotAndReset()
	if snap.isEmpty() {
		return nil
	}

	series := b.buildSeries(snap, b.now().Unix())
	payload := datadogV2.MetricPayload{Series: series}

	_, _, err := b.api.SubmitMetrics(b.ctx, payload, *datadogV2.NewSubmitMetricsOptionalParameters())
	return err
}

// buildSeries is pure (no locks, clocks, or network), which keeps the
// naming/tagging contract unit-testable.
func (b *Backend) buildSeries(s snapshot, nowUnix int64) []datadogV2.MetricSeries {
	series := make([]datadogV2.MetricSeries, 0, len(s.targetCounts)+len(s.pageCounts)+16)

	for status, v := range s.targetCounts {
		if v == 0 {
			continue
		}
		series = append(series, countSeries("coachmail.targets.total", v, withTags(b.baseTags, "status:"+status), nowUnix))
	}

	for kind, v := range s.pageCounts {
		if v == 0 {
			continue
		}
		series = append(series, countSeries("coachmail.pages.total", v, withTags(b.baseTags, "kind:"+kind), nowUnix))
	}

	if s.fetchErrors != 0 {
		series = append(series, countSeries("coachmail.fetch.errors.total", s.fetchErrors, b.baseTags, nowUnix))
	}
	if s.emailCount != 0 {
		series = append(series, countSeries("coachmail.emails.total", s.emailCount, b.baseTags, nowUnix))
	}

	for kind, samples := range s.fetchDur {
		addPercentiles(&series, withTags(b.baseTags, "kind:"+kind), "coachmail.fetch.duration_seconds", samples, nowUnix)
	}
	addPercentiles(&series, b.baseTags, "coachmail.emails_per_target", s.emailsPerTarget, nowUnix)

	return series
}

// addPercentiles appends the fixed percentile gauges for one sample set.
// It sorts a copy; empty sample sets produce nothing.
func addPercentiles(series *[]datadogV2.MetricSeries, tags []string, metricPrefix string, samples []float64, nowUnix int64) {
	if len(samples) == 0 {
		return
	}
	cp := append([]float64(nil), samples...)
	sort.Float64s(cp)

	*series = append(*series, gaugeSeries(metricPrefix+".p50", percentileNearestRank(cp, 0.50), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".p90", percentileNearestRank(cp, 0.90), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".p95", percentileNearestRank(cp, 0.95), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".p99", percentileNearestRank(cp, 0.99), tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".max", cp[len(cp)-1], tags, nowUnix))
	*series = append(*series, gaugeSeries(metricPrefix+".samples", float64(len(cp)), tags, nowUnix))
}

func countSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func gaugeSeries(metric string, value float64, tags []string, nowUnix int64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: metric,
		Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
		Points: []datadogV2.MetricPoint{
			{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(value)},
		},
		Tags: tags,
	}
}

func withTags(base []string, extras ...string) []string {
	out := make([]string, 0, len(base)+len(extras))
	out = append(out, base...)
	out = append(out, extras...)
	return out
}

func percentileNearestRank(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return s[0]
	}
	if p >= 1 {
		return s[n-1]
	}
	idx := int(p*float64(n-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return s[idx]
}

var _ metrics.Backend = (*Backend)(nil)

// ParseTagsCSV parses comma-separated tags like "env:prod,service:x".
func ParseTagsCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
