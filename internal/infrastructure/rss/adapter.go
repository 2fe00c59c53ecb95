// Package rss adapts RSS and Atom feeds to the source-adapter boundary.
package rss

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"AINewsCollector/internal/config"
	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// Adapter fetches one configured feed and maps its entries to raw records.
type Adapter struct {
	sourceID string
	feedURL  string
	parser   *gofeed.Parser
	maxItems int
	cutoff   time.Duration
	now      func() time.Time
}

var _ ports.SourceAdapter = (*Adapter)(nil)

// NewAdapter builds an adapter for one feed. maxItems caps the entries
// taken per fetch; cutoff (when > 0) drops entries older than now-cutoff.
func NewAdapter(sourceID, feedURL string, maxItems int, cutoff time.Duration) *Adapter {
	return &Adapter{
		sourceID: sourceID,
		feedURL:  feedURL,
		parser:   gofeed.NewParser(),
		maxItems: maxItems,
		cutoff:   cutoff,
		now:      time.Now,
	}
}

// SourceID identifies the configured source this adapter serves.
func (a *Adapter) SourceID() string { return a.sourceID }

// Fetch pulls the feed and returns its entries as raw records, newest
// first as the feed orders them. Entries without a parsed timestamp keep a
// zero PublishedAt; the normalizer substitutes fetch time.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", a.feedURL, err)
	}

	var cutoffAt time.Time
	if a.cutoff > 0 {
		cutoffAt = a.now().Add(-a.cutoff)
	}

	records := make([]domain.RawRecord, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if a.maxItems > 0 && len(records) >= a.maxItems {
			break
		}

		var publishedAt time.Time
		if entry.PublishedParsed != nil {
			publishedAt = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			publishedAt = *entry.UpdatedParsed
		}

		if !cutoffAt.IsZero() && !publishedAt.IsZero() && publishedAt.Before(cutoffAt) {
			continue
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}

		records = append(records, domain.RawRecord{
			SourceID:    a.sourceID,
			Title:       entry.Title,
			URL:         entry.Link,
			Summary:     summary,
			PublishedAt: publishedAt,
		})
	}

	return records, nil
}

// Builder registers the adapter under the "rss" kind.
type Builder struct{}

// Kind names the adapter in the source registry.
func (Builder) Kind() string { return "rss" }

// Build constructs the adapter from one source entry.
func (Builder) Build(src config.SourceConfig, fetch config.FetchConfig) (ports.SourceAdapter, error) {
	maxItems := src.MaxItems
	if maxItems == 0 {
		maxItems = fetch.MaxItemsPerSource
	}
	return NewAdapter(src.ID, src.URL, maxItems, time.Duration(fetch.TimeRangeHours)*time.Hour), nil
}
