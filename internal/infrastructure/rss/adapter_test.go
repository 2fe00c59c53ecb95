package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>OpenAI Blog</title>
    <link>https://openai.com/blog</link>
    <item>
      <title>Introducing GPT-5</title>
      <link>https://openai.com/blog/gpt-5</link>
      <description>&lt;p&gt;The next model.&lt;/p&gt;</description>
      <pubDate>Wed, 19 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Older post</title>
      <link>https://openai.com/blog/older</link>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Undated post</title>
      <link>https://openai.com/blog/undated</link>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchMapsEntries(t *testing.T) {
	t.Parallel()

	srv := feedServer(t)
	adapter := NewAdapter("openai", srv.URL, 0, 0)

	records, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.SourceID != "openai" {
		t.Fatalf("source id = %q", first.SourceID)
	}
	if first.Title != "Introducing GPT-5" || first.URL != "https://openai.com/blog/gpt-5" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	want := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("published at = %v, want %v", first.PublishedAt, want)
	}

	if !records[2].PublishedAt.IsZero() {
		t.Fatalf("undated entry must keep zero time, got %v", records[2].PublishedAt)
	}
}

func TestFetchCapsItems(t *testing.T) {
	t.Parallel()

	srv := feedServer(t)
	adapter := NewAdapter("openai", srv.URL, 1, 0)

	records, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record under cap, got %d", len(records))
	}
}

func TestFetchCutoffDropsOldEntries(t *testing.T) {
	t.Parallel()

	srv := feedServer(t)
	adapter := NewAdapter("openai", srv.URL, 0, 24*time.Hour)
	adapter.now = func() time.Time {
		return time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	}

	records, err := adapter.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	for _, rec := range records {
		if rec.Title == "Older post" {
			t.Fatal("entry outside the time range must be dropped")
		}
	}
	if len(records) != 2 {
		t.Fatalf("expected fresh and undated entries, got %d", len(records))
	}
}

func TestFetchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	adapter := NewAdapter("openai", srv.URL, 0, 0)
	if _, err := adapter.Fetch(context.Background()); err == nil {
		t.Fatal("expected error from failing feed")
	}
}
