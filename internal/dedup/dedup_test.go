package dedup

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/index"
)

func itemAt(key, title string, published time.Time) domain.NormalizedItem {
	return domain.NormalizedItem{
		IdentityKey: key,
		Title:       title,
		PublishedAt: published,
		FetchTime:   published,
	}
}

func TestCheckHardDuplicate(t *testing.T) {
	t.Parallel()

	d := New(index.NewMemory(), 0.75, 48*time.Hour)
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	if res := d.Check(itemAt("k1", "OpenAI ships GPT-5", at)); !res.New {
		t.Fatal("first sighting must be new")
	}
	if res := d.Check(itemAt("k1", "completely different title", at)); res.New {
		t.Fatal("same identity key must be a hard duplicate")
	}
}

func TestCheckAgainstPreloadedIndex(t *testing.T) {
	t.Parallel()

	idx := index.NewMemory()
	idx.Add("old", time.Now())

	d := New(idx, 0.75, 48*time.Hour)
	if res := d.Check(itemAt("old", "seen in a previous run", time.Now())); res.New {
		t.Fatal("keys from earlier runs must be hard duplicates")
	}
}

func TestCheckFlagsSoftDuplicate(t *testing.T) {
	t.Parallel()

	d := New(index.NewMemory(), 0.75, 48*time.Hour)
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	first := d.Check(itemAt("a", "OpenAI announces GPT-5 with new reasoning", at))
	if !first.New || first.PossibleDuplicate {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second := d.Check(itemAt("b", "OpenAI announces GPT-5 with new reasoning today", at.Add(2*time.Hour)))
	if !second.New {
		t.Fatal("distinct identity keys are always accepted")
	}
	if !second.PossibleDuplicate || second.SimilarTo != "a" {
		t.Fatalf("expected soft-duplicate flag pointing at a, got %+v", second)
	}
}

func TestCheckWindowBoundsSoftDuplicates(t *testing.T) {
	t.Parallel()

	d := New(index.NewMemory(), 0.75, 48*time.Hour)
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	d.Check(itemAt("a", "OpenAI announces GPT-5 with new reasoning", at))
	res := d.Check(itemAt("b", "OpenAI announces GPT-5 with new reasoning today", at.Add(72*time.Hour)))
	if res.PossibleDuplicate {
		t.Fatal("items published outside the window must not be flagged")
	}
}

func TestCheckDissimilarTitlesNotFlagged(t *testing.T) {
	t.Parallel()

	d := New(index.NewMemory(), 0.75, 48*time.Hour)
	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	d.Check(itemAt("a", "OpenAI announces GPT-5", at))
	res := d.Check(itemAt("b", "Anthropic publishes interpretability research", at))
	if res.PossibleDuplicate {
		t.Fatal("unrelated titles must not be flagged")
	}
}

func TestCheckConcurrentSameKeyAcceptsOne(t *testing.T) {
	t.Parallel()

	d := New(index.NewMemory(), 0.75, 48*time.Hour)
	at := time.Now()

	const workers = 16
	var wg sync.WaitGroup
	accepted := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if res := d.Check(itemAt("shared", fmt.Sprintf("title %d", i), at)); res.New {
				accepted <- struct{}{}
			}
		}(i)
	}
	wg.Wait()
	close(accepted)

	count := 0
	for range accepted {
		count++
	}
	if count != 1 {
		t.Fatalf("exactly one concurrent sighting must win, got %d", count)
	}
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	a := TitleTokens("OpenAI announces GPT-5")
	b := TitleTokens("OpenAI announces GPT-5")
	if got := Jaccard(a, b); got != 1.0 {
		t.Fatalf("identical token sets: got %f", got)
	}

	c := TitleTokens("completely unrelated words here")
	if got := Jaccard(a, c); got != 0 {
		t.Fatalf("disjoint token sets: got %f", got)
	}

	if got := Jaccard(a, map[string]struct{}{}); got != 0 {
		t.Fatalf("empty set: got %f", got)
	}
}
