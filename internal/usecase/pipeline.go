// Package usecase orchestrates one collection run: fetch, normalize,
// deduplicate, classify, persist, report.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"AINewsCollector/internal/classify"
	"AINewsCollector/internal/config"
	"AINewsCollector/internal/dedup"
	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/normalize"
	"AINewsCollector/internal/ports"
)

// PipelineDeps bundles everything a run needs.
type PipelineDeps struct {
	Logger     *slog.Logger
	Adapters   []ports.SourceAdapter
	Normalizer *normalize.Normalizer
	Classifier *classify.Classifier
	Index      ports.IncrementalIndex
	Store      ports.ItemStore
	Notifiers  []ports.Notifier
	Fetch      config.FetchConfig
	Dedup      config.DedupConfig
	Filter     []string
	Now        func() time.Time
}

// Pipeline runs the collection stages end to end.
type Pipeline struct {
	deps PipelineDeps
}

// NewPipeline validates nothing; the caller wires checked dependencies.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{deps: deps}
}

type fetchResult struct {
	sourceID string
	records  []domain.RawRecord
	err      error
}

// Run executes one collection run and returns its report. Source failures
// and notifier failures are recorded, not returned; only a store or index
// persistence failure fails the run.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	startedAt := p.deps.Now()
	report := domain.NewRunReport(uuid.NewString(), startedAt)
	log := p.deps.Logger.With("run_id", report.RunID)

	log.Info("run started", "sources", len(p.deps.Adapters))

	results := p.fetchAll(ctx)

	deduper := dedup.New(p.deps.Index, p.deps.Dedup.SimilarityThreshold, p.deps.Dedup.Window())

	var accepted []domain.ClassifiedItem
	for _, res := range results {
		if res.err != nil {
			log.Warn("source failed", "source", res.sourceID, "error", res.err)
			report.SourceErrors = append(report.SourceErrors, domain.SourceFailure{
				SourceID: res.sourceID,
				Error:    res.err.Error(),
			})
			continue
		}

		for _, raw := range res.records {
			report.TotalFetched++

			item, err := p.deps.Normalizer.Normalize(raw)
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					log.Debug("record rejected", "source", raw.SourceID, "reason", verr.Reason)
					report.Rejected++
					continue
				}
				return report, err
			}

			check := deduper.Check(item)
			if !check.New {
				report.HardDuplicates++
				continue
			}

			classified := p.deps.Classifier.Classify(item, startedAt)
			if check.PossibleDuplicate {
				classified.PossibleDuplicate = true
				report.SoftDuplicates++
				log.Debug("possible duplicate", "key", item.IdentityKey, "similar_to", check.SimilarTo)
			}

			if !p.passesFilter(classified) {
				report.FilteredOut++
				continue
			}

			accepted = append(accepted, classified)
			report.Accepted++
			report.CategoryCounts[classified.Category]++
			report.SourceCounts[classified.SourceName]++
		}
	}

	report.Duration = p.deps.Now().Sub(startedAt)

	// The store write lands before the index is persisted. If persisting
	// fails after a successful save, the next run re-accepts the same
	// items and the store's conflict handling absorbs them; the reverse
	// order would silently lose items.
	if err := p.deps.Store.Save(ctx, accepted, report); err != nil {
		return report, err
	}
	if err := p.deps.Index.Persist(); err != nil {
		return report, err
	}

	for _, notifier := range p.deps.Notifiers {
		if err := notifier.PublishReport(ctx, report); err != nil {
			log.Warn("notifier failed", "error", err)
		}
	}

	log.Info("run finished",
		"fetched", report.TotalFetched,
		"accepted", report.Accepted,
		"hard_duplicates", report.HardDuplicates,
		"soft_duplicates", report.SoftDuplicates,
		"rejected", report.Rejected,
		"filtered", report.FilteredOut,
		"failed_sources", len(report.SourceErrors),
		"duration", report.Duration,
	)

	return report, nil
}

// fetchAll pulls every source with bounded concurrency and returns one
// result per adapter, in adapter order so batch processing stays
// deterministic.
func (p *Pipeline) fetchAll(ctx context.Context) []fetchResult {
	limit := p.deps.Fetch.MaxConcurrentSources
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)
	results := make([]fetchResult, len(p.deps.Adapters))

	done := make(chan int, len(p.deps.Adapters))
	for i, adapter := range p.deps.Adapters {
		go func(i int, adapter ports.SourceAdapter) {
			sem <- struct{}{}
			defer func() { <-sem }()

			records, err := p.fetchWithRetry(ctx, adapter)
			results[i] = fetchResult{sourceID: adapter.SourceID(), records: records, err: err}
			done <- i
		}(i, adapter)
	}
	for range p.deps.Adapters {
		<-done
	}
	return results
}

// fetchWithRetry calls one adapter under a per-attempt deadline, retrying
// with exponential backoff. The final failure is wrapped as a transport
// error so the run isolates it to this source.
func (p *Pipeline) fetchWithRetry(ctx context.Context, adapter ports.SourceAdapter) ([]domain.RawRecord, error) {
	policy := p.deps.Fetch.Retry
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(policy, attempt)
			select {
			case <-ctx.Done():
				return nil, &domain.TransportError{SourceID: adapter.SourceID(), Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.deps.Fetch.Timeout())
		records, err := adapter.Fetch(attemptCtx)
		cancel()
		if err == nil {
			return records, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &domain.TransportError{SourceID: adapter.SourceID(), Err: lastErr}
}

// passesFilter keeps the item when no filter keywords are configured, or
// when its title or summary contains at least one of them.
func (p *Pipeline) passesFilter(item domain.ClassifiedItem) bool {
	if len(p.deps.Filter) == 0 {
		return true
	}
	text := strings.ToLower(item.Title + " " + item.Summary)
	for _, kw := range p.deps.Filter {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func backoffDelay(policy config.RetryPolicy, attempt int) time.Duration {
	initial := float64(policy.InitialDelayMs)
	if initial <= 0 {
		initial = 500
	}
	multiplier := policy.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 2
	}

	ms := initial * math.Pow(multiplier, float64(attempt-1))
	if maxMs := float64(policy.MaxDelayMs); maxMs > 0 && ms > maxMs {
		ms = maxMs
	}
	return time.Duration(ms) * time.Millisecond
}
