// Package pipeline orchestrates one research run: cache probe, parallel
// source fetches, reddit enrichment, normalization, scoring, two-stage
// deduplication, quality assessment, and cache write-back. A run
// tolerates partial source failure; it fails only when configuration
// rules out every source or no source returns data.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/avelichko/lookback/internal/cache"
	"github.com/avelichko/lookback/internal/dates"
	"github.com/avelichko/lookback/internal/dedupe"
	"github.com/avelichko/lookback/internal/enrich"
	"github.com/avelichko/lookback/internal/model"
	"github.com/avelichko/lookback/internal/normalize"
	"github.com/avelichko/lookback/internal/quality"
	"github.com/avelichko/lookback/internal/score"
	"github.com/avelichko/lookback/internal/source"
	"github.com/avelichko/lookback/internal/worker"
)

// ErrNoData means every requested source came back empty or failed and
// no cached report exists to fall back on.
var ErrNoData = errors.New("no source returned any data")

// ConfigurationError means the request cannot run at all: every
// requested source lacks the credentials it needs.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Reason }

// Request is one research run.
type Request struct {
	Topic       string
	Window      dates.Window
	Sources     []model.Source
	Depth       source.Depth
	BypassCache bool
}

// Runner holds the wired components and runs requests against them.
type Runner struct {
	cfg      *model.Config
	brave    *source.BraveClient
	adapters map[model.Source]source.Adapter
	enricher *enrich.Enricher
	store    *cache.ReportStore
	now      func() time.Time
	verbose  bool
}

// NewRunner wires adapters, enricher, and cache from config. Sources
// whose credentials are missing simply get no adapter; the run reports
// them as unavailable rather than failing upfront.
func NewRunner(cfg *model.Config) *Runner {
	r := &Runner{
		cfg:      cfg,
		adapters: make(map[model.Source]source.Adapter),
		now:      time.Now,
		verbose:  cfg.Output.Verbose,
	}

	if cfg.HasBrave() {
		r.brave = source.NewBraveClient(cfg.Brave, cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
		r.adapters[model.SourceReddit] = source.NewRedditAdapter(r.brave)
		r.adapters[model.SourceNews] = source.NewNewsAdapter(r.brave)
		r.adapters[model.SourceWeb] = source.NewWebAdapter(r.brave)
		r.adapters[model.SourceVideo] = source.NewVideoAdapter(r.brave)
	}
	if cfg.HasXAI() {
		r.adapters[model.SourceX] = source.NewXAdapter(cfg.XAI)
	}
	// Algolia needs no key.
	r.adapters[model.SourceHackerNews] = source.NewHackerNewsAdapter(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)

	if cfg.Enrich.Enabled {
		r.enricher = enrich.New(cfg.Enrich, cfg.HTTP)
	}
	if cfg.Cache.Enabled {
		r.store = cache.NewReportStore(cfg.Cache.Dir, cfg.Cache.TTL)
	}

	return r
}

// Run executes one research request end to end.
func (r *Runner) Run(ctx context.Context, req Request) (*model.Report, error) {
	if len(req.Sources) == 0 {
		req.Sources = model.AllSources()
	}
	if req.Depth == "" {
		req.Depth = source.DepthDefault
	}

	fingerprint := cache.Fingerprint(
		req.Topic,
		req.Window.FromString(), req.Window.ToString(),
		req.Sources, string(req.Depth),
	)

	if r.store != nil && !req.BypassCache {
		if report, age, ok := r.store.Get(fingerprint); ok {
			report.FromCache = true
			report.CacheAge = age
			return report, nil
		}
	}

	adapters := r.selectAdapters(req.Sources)
	if len(adapters) == 0 {
		return nil, &ConfigurationError{
			Reason: "no requested source is configured (set a Brave or xAI API key, or include hackernews)",
		}
	}

	now := r.now().UTC()
	report := &model.Report{
		Topic:       req.Topic,
		From:        req.Window.FromString(),
		To:          req.Window.ToString(),
		Depth:       string(req.Depth),
		GeneratedAt: now,
		Errors:      make(map[model.Source]string),
	}

	query := source.Query{Topic: req.Topic, Window: req.Window, Depth: req.Depth}
	batches := r.fetch(ctx, adapters, query, report.Errors)

	byCategory := make(map[model.Source][]model.Item)
	for src, batch := range batches {
		byCategory[src] = normalize.Batch(batch, req.Window)
	}

	// The web provider's discussion cluster becomes its own category.
	if web := batches[model.SourceWeb]; web != nil && web.Artifacts != nil {
		r.applyArtifacts(ctx, report, web.Artifacts)
		if wantSource(req.Sources, model.SourceDiscussion) {
			disc := &source.RawBatch{Source: model.SourceDiscussion, Items: web.Artifacts.Discussions}
			byCategory[model.SourceDiscussion] = normalize.Batch(disc, req.Window)
		}
	}

	// Enrichment can replace a discovery-inferred date with the thread's
	// authoritative one, so the window filter runs again afterwards.
	r.enrichReddit(ctx, byCategory[model.SourceReddit])
	byCategory[model.SourceReddit] = normalize.FilterWindow(byCategory[model.SourceReddit], req.Window)

	scorer := score.NewScorer(now, req.Window)
	for src, items := range byCategory {
		items = scorer.ScoreBatch(src, items)
		byCategory[src] = dedupe.WithinSource(items)
	}
	byCategory = dedupe.AcrossSources(byCategory)

	for src, items := range byCategory {
		report.SetItems(src, items)
	}

	report.Quality = quality.Assess(report, now)

	if report.TotalItems() == 0 {
		return nil, ErrNoData
	}

	if r.store != nil {
		if err := r.store.Put(fingerprint, report); err != nil && r.verbose {
			fmt.Printf("Warning: cache write failed: %v\n", err)
		}
	}

	return report, nil
}

// selectAdapters intersects the requested sources with the configured
// adapters. Discussion rides on the web adapter and never appears here.
func (r *Runner) selectAdapters(requested []model.Source) []source.Adapter {
	var adapters []source.Adapter
	for _, src := range requested {
		if a, ok := r.adapters[src]; ok {
			adapters = append(adapters, a)
		}
	}
	return adapters
}

// fetch runs every adapter on the fetch pool and collects raw batches.
// Failures land in errs keyed by category; they never abort the run.
func (r *Runner) fetch(ctx context.Context, adapters []source.Adapter, query source.Query, errs map[model.Source]string) map[model.Source]*source.RawBatch {
	pool := worker.NewPool(ctx, r.cfg.Concurrency.FetchWorkers)
	pool.Start()

	// Adapters page internally, so each job gets headroom beyond the
	// single-request timeout.
	timeout := 3 * r.cfg.HTTP.Timeout
	for _, adapter := range adapters {
		pool.Submit(&searchJob{adapter: adapter, query: query, timeout: timeout})
	}

	batches := make(map[model.Source]*source.RawBatch)
	seen := make(map[model.Source]bool)
	for _, result := range pool.Wait() {
		res := result.(*searchResult)
		seen[res.source] = true
		if res.err != nil {
			errs[res.source] = res.err.Error()
			continue
		}
		if res.batch != nil {
			batches[res.source] = res.batch
		}
	}

	// Jobs still pending when the run deadline hit produce no result;
	// those categories failed, they were not skipped.
	for _, adapter := range adapters {
		if src := adapter.Name(); !seen[src] {
			if err := ctx.Err(); err != nil {
				errs[src] = err.Error()
			} else {
				errs[src] = "search did not complete"
			}
		}
	}
	return batches
}

// enrichReddit upgrades reddit items with verified thread data on the
// enrichment pool. Per-item failures are tolerated: the item keeps its
// discovery estimate.
func (r *Runner) enrichReddit(ctx context.Context, items []model.Item) {
	if r.enricher == nil || len(items) == 0 {
		return
	}

	pool := worker.NewPool(ctx, r.cfg.Concurrency.EnrichWorkers)
	pool.Start()
	for i := range items {
		pool.Submit(&enrichJob{enricher: r.enricher, item: &items[i]})
	}
	for _, result := range pool.Wait() {
		if err := result.GetError(); err != nil && r.verbose {
			fmt.Printf("Warning: %v\n", err)
		}
	}
}

// applyArtifacts copies run-level web extras onto the report and trades
// the summarizer key for summary text. Summary failures are soft.
func (r *Runner) applyArtifacts(ctx context.Context, report *model.Report, artifacts *source.Artifacts) {
	report.FAQs = artifacts.FAQs
	report.Infobox = artifacts.Infobox

	if artifacts.SummarizerKey == "" || r.brave == nil {
		return
	}
	summary, followups, err := r.brave.Summarize(ctx, artifacts.SummarizerKey)
	if err != nil {
		if r.verbose {
			fmt.Printf("Warning: summarizer fetch failed: %v\n", err)
		}
		return
	}
	report.Summary = summary
	report.SummaryFollowups = followups
}

func wantSource(requested []model.Source, src model.Source) bool {
	for _, s := range requested {
		if s == src {
			return true
		}
	}
	return false
}

// SortedErrorSources returns the failed categories in stable order, for
// rendering.
func SortedErrorSources(errs map[model.Source]string) []model.Source {
	sources := make([]model.Source, 0, len(errs))
	for src := range errs {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}
