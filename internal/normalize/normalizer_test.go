package normalize

import (
	"errors"
	"testing"
	"time"

	"AINewsCollector/internal/domain"
)

func testSources() map[string]domain.SourceMeta {
	return map[string]domain.SourceMeta{
		"openai":     {Name: "OpenAI Blog", Type: domain.SourceInternational, Language: domain.LangEN},
		"jiqizhixin": {Name: "机器之心", Type: domain.SourceDomestic, Language: domain.LangZH},
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
}

func TestIdentityKeyIgnoresTrackingAndCase(t *testing.T) {
	t.Parallel()

	variants := []string{
		"https://example.com/news/gpt-5-launch?utm_source=rss&utm_medium=feed",
		"HTTPS://EXAMPLE.COM/news/GPT-5-Launch",
		"https://example.com/news/gpt-5-launch/",
		"https://example.com/news/gpt-5-launch#section-2",
		"https://example.com/news/gpt-5-launch?ref=homepage&fbclid=abc123",
	}

	base, _, err := IdentityKey(variants[0], "")
	if err != nil {
		t.Fatalf("IdentityKey: %v", err)
	}
	for _, v := range variants[1:] {
		key, _, err := IdentityKey(v, "")
		if err != nil {
			t.Fatalf("IdentityKey(%s): %v", v, err)
		}
		if key != base {
			t.Fatalf("expected %s to share identity with %s", v, variants[0])
		}
	}
}

func TestIdentityKeyKeepsMeaningfulQuery(t *testing.T) {
	t.Parallel()

	a, _, _ := IdentityKey("https://example.com/watch?v=abc", "")
	b, _, _ := IdentityKey("https://example.com/watch?v=def", "")
	if a == b {
		t.Fatal("distinct non-tracking queries must yield distinct keys")
	}
}

func TestIdentityKeyTitleFallback(t *testing.T) {
	t.Parallel()

	a, _, err := IdentityKey("", "  GPT-5  Launch!  ")
	if err != nil {
		t.Fatalf("IdentityKey: %v", err)
	}
	b, _, _ := IdentityKey("", "gpt-5 launch")
	if a != b {
		t.Fatal("canonical titles must produce equal keys")
	}

	c, _, err := IdentityKey("https://bad host/x", "GPT-5 Launch")
	if err != nil {
		t.Fatalf("broken url with title must fall back, not fail: %v", err)
	}
	if c != a {
		t.Fatal("fallback key must match the title-derived key")
	}
}

func TestNormalizeRejectsEmptyRecord(t *testing.T) {
	t.Parallel()

	n := New(testSources(), fixedNow)
	_, err := n.Normalize(domain.RawRecord{SourceID: "openai"})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestNormalizeRejectsUnknownSource(t *testing.T) {
	t.Parallel()

	n := New(testSources(), fixedNow)
	_, err := n.Normalize(domain.RawRecord{SourceID: "ghost", Title: "anything"})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.SourceID != "ghost" {
		t.Fatalf("error should carry source id, got %q", verr.SourceID)
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	t.Parallel()

	n := New(testSources(), fixedNow)
	item, err := n.Normalize(domain.RawRecord{
		SourceID: "openai",
		Title:    "Introducing GPT-5",
		URL:      "https://openai.com/blog/gpt-5?utm_campaign=launch",
		Summary:  "<p>The <b>next</b> model.</p>",
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if item.SourceName != "OpenAI Blog" || item.SourceType != domain.SourceInternational {
		t.Fatalf("source metadata not applied: %+v", item)
	}
	if item.Summary != "The next model." {
		t.Fatalf("expected stripped summary, got %q", item.Summary)
	}
	if !item.FetchTime.Equal(fixedNow()) {
		t.Fatalf("fetch time not taken from clock: %v", item.FetchTime)
	}
	if !item.PublishedAt.Equal(fixedNow()) {
		t.Fatalf("missing published_at must default to fetch time, got %v", item.PublishedAt)
	}
	if item.URL != "https://openai.com/blog/gpt-5" {
		t.Fatalf("url not canonicalized: %q", item.URL)
	}
}

func TestNormalizeTruncatesSummary(t *testing.T) {
	t.Parallel()

	long := make([]rune, 900)
	for i := range long {
		long[i] = 'x'
	}

	n := New(testSources(), fixedNow)
	item, err := n.Normalize(domain.RawRecord{SourceID: "openai", Title: "t", Summary: string(long)})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := len([]rune(item.Summary)); got != maxSummaryRunes {
		t.Fatalf("expected summary capped at %d runes, got %d", maxSummaryRunes, got)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want domain.Language
	}{
		{"OpenAI releases a new model", domain.LangEN},
		{"智谱AI发布新模型", domain.LangMixed},
		{"百度发布新模型", domain.LangZH},
		{"", domain.LangEN},
	}
	for _, tc := range cases {
		if got := DetectLanguage(tc.text); got != tc.want {
			t.Fatalf("DetectLanguage(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestCanonicalTitle(t *testing.T) {
	t.Parallel()

	got := CanonicalTitle("  GPT-5:  The Next    Step!! ")
	if got != "gpt5 the next step" {
		t.Fatalf("CanonicalTitle = %q", got)
	}
}
