// Package htmllist adapts arXiv-style HTML listing pages (dl/dt/dd
// structure) to the source-adapter boundary.
package htmllist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AINewsCollector/internal/config"
	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

const defaultPageSize = 100

var dateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

// Adapter crawls one listing endpoint page by page and extracts entries.
type Adapter struct {
	sourceID string
	listURL  string
	client   *http.Client
	pageSize int
	maxItems int
}

var _ ports.SourceAdapter = (*Adapter)(nil)

// NewAdapter wires an HTTP client; a nil client gets a default without its
// own timeout, since the caller controls deadlines through ctx.
func NewAdapter(sourceID, listURL string, client *http.Client, maxItems int) *Adapter {
	if client == nil {
		client = &http.Client{}
	}
	return &Adapter{
		sourceID: sourceID,
		listURL:  listURL,
		client:   client,
		pageSize: defaultPageSize,
		maxItems: maxItems,
	}
}

// SourceID identifies the configured source this adapter serves.
func (a *Adapter) SourceID() string { return a.sourceID }

// Fetch walks listing pages until maxItems is reached or a short page
// signals the end.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	records := make([]domain.RawRecord, 0, a.pageSize)
	skip := 0

	for {
		pageURL, err := buildPageURL(a.listURL, skip, a.pageSize)
		if err != nil {
			return nil, err
		}

		doc, err := a.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		pageRecords := a.extractRecords(doc)
		records = append(records, pageRecords...)

		if a.maxItems > 0 && len(records) >= a.maxItems {
			records = records[:a.maxItems]
			break
		}
		if len(pageRecords) < a.pageSize {
			break
		}
		skip += a.pageSize
	}

	return records, nil
}

func (a *Adapter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "AINewsCollector/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return doc, nil
}

func (a *Adapter) extractRecords(doc *goquery.Document) []domain.RawRecord {
	base, _ := url.Parse(a.listURL)

	var collected []domain.RawRecord
	doc.Find("dl > dt").Each(func(i int, dt *goquery.Selection) {
		dd := dt.Next()
		if record, ok := parseEntry(dt, dd, a.sourceID, base); ok {
			collected = append(collected, record)
		}
	})
	return collected
}

func parseEntry(dt, dd *goquery.Selection, sourceID string, base *url.URL) (domain.RawRecord, bool) {
	link := dt.Find(`a[href*="/abs/"]`).First()
	href, _ := link.Attr("href")
	if href != "" && !strings.HasPrefix(href, "http") && base != nil {
		if abs, err := base.Parse(href); err == nil {
			href = abs.String()
		}
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	if href == "" && title == "" {
		return domain.RawRecord{}, false
	}

	summary := dd.Find(".mathjax").First().Text()
	summary = strings.TrimSpace(strings.TrimPrefix(summary, "Abstract:"))

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}
	var publishedAt time.Time
	if match := dateExpr.FindString(dateText); match != "" {
		if parsed, err := time.Parse("2 Jan 2006", match); err == nil {
			publishedAt = parsed
		}
	}

	return domain.RawRecord{
		SourceID:    sourceID,
		Title:       title,
		URL:         href,
		Summary:     summary,
		PublishedAt: publishedAt,
	}, true
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Builder registers the adapter under the "htmllist" kind.
type Builder struct {
	Client *http.Client
}

// Kind names the adapter in the source registry.
func (Builder) Kind() string { return "htmllist" }

// Build constructs the adapter from one source entry.
func (b Builder) Build(src config.SourceConfig, fetch config.FetchConfig) (ports.SourceAdapter, error) {
	maxItems := src.MaxItems
	if maxItems == 0 {
		maxItems = fetch.MaxItemsPerSource
	}
	return NewAdapter(src.ID, src.URL, b.Client, maxItems), nil
}
