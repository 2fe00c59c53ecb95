// Package dedup decides whether normalized items are new, using the
// incremental index for hard duplicates and title similarity for soft ones.
package dedup

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// Result of a duplicate check for one item.
type Result struct {
	// New is false when the identity key was already recorded; such
	// items are dropped silently.
	New bool
	// PossibleDuplicate marks a distinct identity key whose title is
	// close enough to an earlier item of this run. Flagged, never dropped.
	PossibleDuplicate bool
	// SimilarTo is the identity key of the earlier item, when flagged.
	SimilarTo string
}

type seenTitle struct {
	key         string
	tokens      map[string]struct{}
	publishedAt time.Time
}

// Deduplicator is created once per run; soft-duplicate comparison is
// bounded to items observed within the same run.
type Deduplicator struct {
	index     ports.IncrementalIndex
	threshold float64
	window    time.Duration

	mu   sync.Mutex
	seen []seenTitle
}

// New builds a per-run deduplicator on top of the shared index.
func New(index ports.IncrementalIndex, threshold float64, window time.Duration) *Deduplicator {
	return &Deduplicator{index: index, threshold: threshold, window: window}
}

// Check records the item as seen and reports whether it is new. The hard
// path is a single atomic check-and-set on the index, so two concurrently
// processed items sharing an identity key cannot both be accepted, and the
// decision depends only on index state and batch order, never wall-clock.
func (d *Deduplicator) Check(item domain.NormalizedItem) Result {
	if !d.index.Add(item.IdentityKey, item.FetchTime) {
		return Result{New: false}
	}

	tokens := TitleTokens(item.Title)

	d.mu.Lock()
	defer d.mu.Unlock()

	res := Result{New: true}
	for _, prev := range d.seen {
		if !withinWindow(prev.publishedAt, item.PublishedAt, d.window) {
			continue
		}
		if Jaccard(tokens, prev.tokens) >= d.threshold {
			res.PossibleDuplicate = true
			res.SimilarTo = prev.key
			break
		}
	}

	d.seen = append(d.seen, seenTitle{key: item.IdentityKey, tokens: tokens, publishedAt: item.PublishedAt})
	return res
}

// TitleTokens splits a title into a lower-cased token set.
func TitleTokens(title string) map[string]struct{} {
	split := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	out := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(strings.ToLower(title), split) {
		out[w] = struct{}{}
	}
	return out
}

// Jaccard computes token-set overlap: |a∩b| / |a∪b|.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}
