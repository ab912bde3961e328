// Package pipeline sequences the per-target extraction stages.
//
// Each target walks a short, strictly forward state machine:
//
//  1. sport page, direct block scan (role filter only);
//  2. sport page, bio-link fallback;
//  3. staff directory, direct block scan (role AND sport filter);
//  4. staff directory, bio-link fallback.
//
// The first stage yielding any email terminates the walk. A fetch failure
// aborts only its own stage; the directory stages still run. Only when no
// stage could proceed at all does the target surface an error.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"coachmail/internal/classify"
	"coachmail/internal/emailparser"
	"coachmail/internal/metrics"
	"coachmail/internal/segment"
	"coachmail/internal/sportmatch"
	"coachmail/internal/targets"
	"coachmail/internal/textnorm"
)

// Fetcher is the page-fetching collaborator. The pipeline only ever GETs;
// tests substitute canned HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Options tune a pipeline. The zero value is usable.
type Options struct {
	// MaxBioPages caps bio-page fan-out per listing page. A single staff
	// listing must never trigger unbounded crawling. Default 30.
	MaxBioPages int

	// BioPause separates successive bio-page fetches. This is politeness
	// toward the target server, not a performance knob. Default 600ms.
	BioPause time.Duration

	// Sleep seam; tests replace it to run instantly. Default time.Sleep.
	Sleep func(time.Duration)

	// Logf seam for verbose diagnostics. Nil disables logging.
	Logf func(format string, v ...any)
}

// Pipeline resolves targets to email sets. Safe for sequential reuse across
// targets; it holds no per-target state.
type Pipeline struct {
	fetcher Fetcher
	opts    Options
}

// New builds a Pipeline around fetcher, applying Option defaults.
func New(fetcher Fetcher, opts Options) *Pipeline {
	if opts.MaxBioPages <= 0 {
		opts.MaxBioPages = 30
	}
	if opts.BioPause <= 0 {
		opts.BioPause = 600 * time.Millisecond
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	return &Pipeline{fetcher: fetcher, opts: opts}
}

func (p *Pipeline) logf(format string, v ...any) {
	if p.opts.Logf != nil {
		p.opts.Logf(format, v...)
	}
}

// errStageSkipped marks a stage that does not apply to this target (e.g. no
// staff directory URL). Skipped stages are neither successes nor failures.
var errStageSkipped = fmt.Errorf("stage skipped")

// resolution carries per-target state across stages. The sport page and the
// directory page are each fetched at most once and shared by their
// direct/bio stage pair.
type resolution struct {
	target targets.Target

	primaryDoc  *goquery.Document
	primaryErr  error
	primaryDone bool

	dirDoc  *goquery.Document
	dirErr  error
	dirDone bool
}

func (p *Pipeline) primary(ctx context.Context, r *resolution) (*goquery.Document, error) {
	if !r.primaryDone {
		r.primaryDoc, r.primaryErr = p.fetchDoc(ctx, r.target.URL, "sport_page")
		r.primaryDone = true
	}
	return r.primaryDoc, r.primaryErr
}

func (p *Pipeline) directory(ctx context.Context, r *resolution) (*goquery.Document, error) {
	if !r.dirDone {
		r.dirDoc, r.dirErr = p.fetchDoc(ctx, r.target.StaffDirectoryURL, "directory")
		r.dirDone = true
	}
	return r.dirDoc, r.dirErr
}

// Resolve runs the stage sequence for t and returns the discovered emails,
// sorted case-insensitively.
//
// Errors:
//   - returns an error only when no stage could proceed (the sport page
//     failed to fetch and no usable staff directory existed); the error is
//     the first fetch failure, for the report's error marker.
//
// A target where some stage ran but found nothing yields an empty slice and
// a nil error.
func (p *Pipeline) Resolve(ctx context.Context, t targets.Target) ([]string, error) {
	r := &resolution{target: t}

	stages := []struct {
		name string
		run  func(context.Context, *resolution) (*emailSet, error)
	}{
		{"sport_page", p.scanSportPage},
		{"sport_page_bios", p.scanSportPageBios},
		{"directory", p.scanDirectory},
		{"directory_bios", p.scanDirectoryBios},
	}

	var (
		ranAny   bool
		firstErr error
	)

	for _, s := range stages {
		set, err := s.run(ctx, r)
		if err == errStageSkipped {
			continue
		}
		if err != nil {
			p.logf("target %s: stage %s: %v", t.University, s.name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		ranAny = true
		if set.len() > 0 {
			p.logf("target %s: stage %s found %d email(s)", t.University, s.name, set.len())
			return set.emails(), nil
		}
	}

	if !ranAny {
		if firstErr == nil {
			firstErr = fmt.Errorf("no applicable extraction stage")
		}
		return nil, firstErr
	}
	return nil, nil
}

// scanSportPage harvests emails from role-qualifying blocks of the sport
// page. No sport filter here: the page is already assumed sport-specific.
func (p *Pipeline) scanSportPage(ctx context.Context, r *resolution) (*emailSet, error) {
	doc, err := p.primary(ctx, r)
	if err != nil {
		return nil, err
	}
	return p.scanBlocks(doc, r.target.Sport, false), nil
}

// scanSportPageBios follows bio links collected from the sport page (role
// filter only) and harvests each bio page.
func (p *Pipeline) scanSportPageBios(ctx context.Context, r *resolution) (*emailSet, error) {
	doc, err := p.primary(ctx, r)
	if err != nil {
		return nil, err
	}
	links := segment.BioLinks(doc, r.target.URL, r.target.Sport, false)
	return p.scanBios(ctx, links), nil
}

// scanDirectory harvests the staff directory. Directories list every sport,
// so blocks must pass the role AND the sport filter.
func (p *Pipeline) scanDirectory(ctx context.Context, r *resolution) (*emailSet, error) {
	if strings.TrimSpace(r.target.StaffDirectoryURL) == "" {
		return nil, errStageSkipped
	}
	doc, err := p.directory(ctx, r)
	if err != nil {
		return nil, err
	}

	if p.opts.Logf != nil {
		score, matched := sportmatch.PageConfidence(doc, r.target.Sport)
		p.logf("target %s: directory sport confidence %d %v", r.target.University, score, matched)
	}

	return p.scanBlocks(doc, r.target.Sport, true), nil
}

// scanDirectoryBios follows bio links from the directory under the combined
// role+sport filter.
func (p *Pipeline) scanDirectoryBios(ctx context.Context, r *resolution) (*emailSet, error) {
	if strings.TrimSpace(r.target.StaffDirectoryURL) == "" {
		return nil, errStageSkipped
	}
	doc, err := p.directory(ctx, r)
	if err != nil {
		return nil, err
	}
	links := segment.BioLinks(doc, r.target.StaffDirectoryURL, r.target.Sport, true)
	return p.scanBios(ctx, links), nil
}

// scanBlocks segments doc and harvests emails from every qualifying block.
func (p *Pipeline) scanBlocks(doc *goquery.Document, sport string, requireSport bool) *emailSet {
	set := newEmailSet()
	for _, b := range segment.Segment(doc) {
		if !classify.IsTargetRole(b.Text) {
			continue
		}
		if requireSport && !sportmatch.Match(b.Text, sport) {
			continue
		}
		set.addAll(emailparser.FindEmails(b.Sel))
	}
	return set
}

// scanBios fetches up to MaxBioPages bio links and full-page scans each one.
//
// A failed bio fetch is skipped without affecting its siblings. Bio pages
// whose whole text names an excluded role (a grad assistant's bio reached
// through a shared roster link) are dropped. A short pause separates
// successive fetches.
func (p *Pipeline) scanBios(ctx context.Context, links []string) *emailSet {
	if len(links) > p.opts.MaxBioPages {
		links = links[:p.opts.MaxBioPages]
	}

	set := newEmailSet()
	for _, u := range links {
		doc, err := p.fetchDoc(ctx, u, "bio")
		if err == nil {
			text := textnorm.Normalize(textnorm.Deobfuscate(emailparser.JoinedText(doc.Selection)))
			if !classify.IsExcluded(text) {
				set.addAll(emailparser.FindEmailsAnywhere(doc))
			}
		}
		p.opts.Sleep(p.opts.BioPause)
	}
	return set
}

// fetchDoc fetches url and parses it, reporting fetch metrics under kind.
func (p *Pipeline) fetchDoc(ctx context.Context, url, kind string) (*goquery.Document, error) {
	start := time.Now()
	html, err := p.fetcher.Fetch(ctx, url)
	metrics.ObserveHistogram("coachmail_fetch_duration_seconds", time.Since(start).Seconds(), metrics.Labels{"kind": kind})
	if err != nil {
		metrics.IncCounter("coachmail_fetch_errors_total", 1, nil)
		return nil, err
	}
	metrics.IncCounter("coachmail_pages_total", 1, metrics.Labels{"kind": kind})

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", url, err)
	}
	return doc, nil
}
