package domain

import "time"

// SourceType distinguishes international and domestic publishers.
type SourceType string

const (
	SourceInternational SourceType = "international"
	SourceDomestic      SourceType = "domestic"
)

// Language of an item's text, detected from script ranges.
type Language string

const (
	LangZH    Language = "zh"
	LangEN    Language = "en"
	LangMixed Language = "mixed"
)

// Category is the fixed classification set for items.
type Category string

const (
	CategoryNews      Category = "news"
	CategoryProduct   Category = "product"
	CategoryTechnical Category = "technical"
	CategoryResearch  Category = "research"
	CategoryInterview Category = "interview"
	CategoryOpinion   Category = "opinion"
)

// Categories lists every valid category.
func Categories() []Category {
	return []Category{
		CategoryNews,
		CategoryProduct,
		CategoryTechnical,
		CategoryResearch,
		CategoryInterview,
		CategoryOpinion,
	}
}

// SourceMeta is the static per-source metadata table entry.
type SourceMeta struct {
	Name     string
	Type     SourceType
	Language Language
}

// RawRecord is what a source adapter yields for a single entry.
// At least one of URL or Title must be present; everything else is optional.
type RawRecord struct {
	SourceID    string
	Title       string
	URL         string
	Summary     string
	Language    string
	PublishedAt time.Time
}

// NormalizedItem is a validated record with a stable identity key.
type NormalizedItem struct {
	IdentityKey string     `json:"identity_key"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	SourceID    string     `json:"source_id"`
	SourceName  string     `json:"source_name"`
	SourceType  SourceType `json:"source_type"`
	Language    Language   `json:"language"`
	Summary     string     `json:"summary"`
	PublishedAt time.Time  `json:"published_at"`
	FetchTime   time.Time  `json:"fetch_time"`
}

// ClassifiedItem is a normalized item with category, vocabulary matches and
// an importance score. Immutable once produced.
type ClassifiedItem struct {
	NormalizedItem

	Category          Category `json:"category"`
	Tags              []string `json:"tags"`
	Companies         []string `json:"companies"`
	Importance        int      `json:"importance"`
	PossibleDuplicate bool     `json:"possible_duplicate,omitempty"`
}
