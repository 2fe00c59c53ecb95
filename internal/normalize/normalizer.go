// Package normalize converts raw source records into canonical items with
// stable identity keys.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"AINewsCollector/internal/domain"
)

const maxSummaryRunes = 500

// trackingParams are query parameters that never change the content a URL
// points at, only how the visitor got there.
var trackingParams = map[string]struct{}{
	"ref":     {},
	"ref_src": {},
	"fbclid":  {},
	"gclid":   {},
	"igshid":  {},
	"mc_cid":  {},
	"mc_eid":  {},
	"spm":     {},
	"from":    {},
	"source":  {},
}

// Normalizer validates raw records against the source-metadata table and
// derives identity keys, language and timestamps.
type Normalizer struct {
	sources map[string]domain.SourceMeta
	now     func() time.Time
}

// New builds a normalizer over the static source table. nowFn may be nil.
func New(sources map[string]domain.SourceMeta, nowFn func() time.Time) *Normalizer {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Normalizer{sources: sources, now: nowFn}
}

// Normalize turns one raw record into a NormalizedItem or rejects it with
// a domain.ValidationError. The identity key is a pure function of the
// canonical URL (or canonical title when no URL exists) and never depends
// on fetch time.
func (n *Normalizer) Normalize(raw domain.RawRecord) (domain.NormalizedItem, error) {
	title := strings.TrimSpace(raw.Title)
	rawURL := strings.TrimSpace(raw.URL)

	if title == "" && rawURL == "" {
		return domain.NormalizedItem{}, &domain.ValidationError{SourceID: raw.SourceID, Reason: "neither url nor title present"}
	}

	meta, ok := n.sources[raw.SourceID]
	if !ok {
		return domain.NormalizedItem{}, &domain.ValidationError{SourceID: raw.SourceID, Reason: "unknown source id"}
	}

	key, canonURL, err := IdentityKey(rawURL, title)
	if err != nil {
		return domain.NormalizedItem{}, &domain.ValidationError{SourceID: raw.SourceID, Reason: err.Error()}
	}

	summary := StripHTML(raw.Summary)
	summary = truncateRunes(summary, maxSummaryRunes)

	fetchTime := n.now()
	publishedAt := raw.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = fetchTime
	}

	return domain.NormalizedItem{
		IdentityKey: key,
		Title:       title,
		URL:         canonURL,
		SourceID:    raw.SourceID,
		SourceName:  meta.Name,
		SourceType:  meta.Type,
		Language:    DetectLanguage(title + " " + summary),
		Summary:     summary,
		PublishedAt: publishedAt,
		FetchTime:   fetchTime,
	}, nil
}

// IdentityKey derives the deterministic fingerprint for a record. It
// prefers the canonical URL and falls back to the canonical title; the two
// derivations are prefixed so they can never collide. The second return
// value is the canonical URL ("" when the title path was taken).
func IdentityKey(rawURL, title string) (string, string, error) {
	if rawURL != "" {
		canon, err := CanonicalURL(rawURL)
		if err != nil {
			// A broken URL is not fatal when a title exists.
			if title == "" {
				return "", "", err
			}
		} else {
			return fingerprint("url\x00" + canon), canon, nil
		}
	}
	return fingerprint("title\x00" + CanonicalTitle(title)), "", nil
}

// CanonicalURL lower-cases scheme, host and path, drops the fragment and
// strips tracking query parameters. Remaining parameters are re-encoded in
// sorted order so equivalent URLs compare equal.
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.ToLower(u.Path)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	for param := range q {
		if _, drop := trackingParams[param]; drop || strings.HasPrefix(param, "utm_") {
			q.Del(param)
		}
	}
	if len(q) == 0 {
		u.RawQuery = ""
	} else {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			for _, v := range q[k] {
				if b.Len() > 0 {
					b.WriteByte('&')
				}
				b.WriteString(url.QueryEscape(k))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
		u.RawQuery = b.String()
	}

	return u.String(), nil
}

// CanonicalTitle lower-cases, strips punctuation and collapses whitespace.
func CanonicalTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DetectLanguage applies script-range heuristics: CJK code points alone
// mean zh, CJK mixed with latin letters means mixed, everything else en.
func DetectLanguage(text string) domain.Language {
	var hasCJK, hasLatin bool
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			hasCJK = true
		case r < 128 && unicode.IsLetter(r):
			hasLatin = true
		}
		if hasCJK && hasLatin {
			return domain.LangMixed
		}
	}
	if hasCJK {
		return domain.LangZH
	}
	return domain.LangEN
}

// StripHTML removes markup from feed summaries. Sources embed anything
// from plain text to full article fragments.
func StripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsRune(s, '<') {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func fingerprint(material string) string {
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
