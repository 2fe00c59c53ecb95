package classify

import (
	"strings"
	"testing"
	"time"

	"AINewsCollector/internal/domain"
)

var asOf = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func defaultClassifier() *Classifier {
	return New(nil, nil, nil, ImportancePolicy{})
}

func item(title, summary string, published time.Time) domain.NormalizedItem {
	return domain.NormalizedItem{Title: title, Summary: summary, PublishedAt: published}
}

func TestClassifyCompaniesAndCategory(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()
	got := c.Classify(item("OpenAI and Anthropic announce joint safety research", "", asOf), asOf)

	if got.Category != domain.CategoryResearch {
		t.Fatalf("expected research, got %s", got.Category)
	}
	wantCompanies := map[string]bool{"OpenAI": true, "Anthropic": true}
	if len(got.Companies) != 2 {
		t.Fatalf("expected two companies, got %v", got.Companies)
	}
	for _, name := range got.Companies {
		if !wantCompanies[name] {
			t.Fatalf("unexpected company %s", name)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()
	// Both the interview and news tables match; the interview rule is
	// checked first.
	got := c.Classify(item("Breaking news: an interview with the team", "", asOf), asOf)
	if got.Category != domain.CategoryInterview {
		t.Fatalf("expected interview, got %s", got.Category)
	}
}

func TestClassifyDefaultsToNews(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()
	got := c.Classify(item("Quarterly letter to shareholders", "", asOf), asOf)
	if got.Category != domain.CategoryNews {
		t.Fatalf("expected news fallback, got %s", got.Category)
	}
}

func TestClassifyChineseKeywords(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()
	got := c.Classify(item("百度发布文心一言新版本", "", asOf), asOf)

	if got.Category != domain.CategoryProduct {
		t.Fatalf("expected product, got %s", got.Category)
	}
	found := false
	for _, name := range got.Companies {
		if name == "百度" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 百度 in companies, got %v", got.Companies)
	}
}

func TestClassifyWordBoundary(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()
	got := c.Classify(item("Metaverse startups report funding news", "", asOf), asOf)
	for _, name := range got.Companies {
		if name == "Meta" {
			t.Fatal("Meta must not match inside Metaverse")
		}
	}

	got = c.Classify(item("Meta releases a new model", "", asOf), asOf)
	found := false
	for _, name := range got.Companies {
		if name == "Meta" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Meta match, got %v", got.Companies)
	}
}

func TestClassifyTags(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()
	got := c.Classify(item("A deep dive into transformer architectures for LLM training", "", asOf), asOf)

	want := map[string]bool{"LLM": false, "Transformer": false}
	for _, tag := range got.Tags {
		if _, ok := want[tag]; ok {
			want[tag] = true
		}
	}
	for tag, seen := range want {
		if !seen {
			t.Fatalf("expected tag %s in %v", tag, got.Tags)
		}
	}
}

func TestImportanceMonotonicity(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()

	none := c.Classify(item("research paper on obscure topic", "", asOf.Add(-100*time.Hour)), asOf)
	one := c.Classify(item("OpenAI research paper on obscure topic", "", asOf.Add(-100*time.Hour)), asOf)
	if one.Importance < none.Importance {
		t.Fatalf("one company %d must not score below zero companies %d", one.Importance, none.Importance)
	}

	stale := c.Classify(item("OpenAI research paper", "", asOf.Add(-100*time.Hour)), asOf)
	fresh := c.Classify(item("OpenAI research paper", "", asOf.Add(-1*time.Hour)), asOf)
	if fresh.Importance < stale.Importance {
		t.Fatalf("fresh %d must not score below stale %d", fresh.Importance, stale.Importance)
	}
}

func TestImportanceClamped(t *testing.T) {
	t.Parallel()

	c := defaultClassifier()
	long := strings.Repeat("x", 200)
	got := c.Classify(item("OpenAI Google Anthropic Meta NVIDIA research breakthrough paper", long, asOf), asOf)
	if got.Importance > 10 || got.Importance < 1 {
		t.Fatalf("importance out of range: %d", got.Importance)
	}
	if got.Importance != 10 {
		t.Fatalf("heavily loaded item should saturate at 10, got %d", got.Importance)
	}
}

func TestClassifyCustomRules(t *testing.T) {
	t.Parallel()

	rules := []Rule{{Category: domain.CategoryOpinion, KeywordsEN: []string{"hot take"}}}
	c := New(rules, nil, nil, ImportancePolicy{})

	got := c.Classify(item("A hot take on model scaling", "", asOf), asOf)
	if got.Category != domain.CategoryOpinion {
		t.Fatalf("expected opinion from custom rule, got %s", got.Category)
	}
}
