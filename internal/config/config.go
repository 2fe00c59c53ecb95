package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"AINewsCollector/internal/domain"
)

const (
	configPathEnv     = "NEWS_COLLECTOR_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	mongoURIEnv       = "MONGO_URI"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	webhookTokenEnv   = "WEBHOOK_TOKEN"
)

// Config holds all settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Dedup         DedupConfig        `yaml:"dedup"`
	Classify      ClassifyConfig     `yaml:"classify"`
	Storage       StorageConfig      `yaml:"storage"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig selects handler level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FetchConfig bounds the concurrent fetching stage.
type FetchConfig struct {
	MaxConcurrentSources int         `yaml:"maxConcurrentSources"`
	TimeoutSec           int         `yaml:"timeoutSec"`
	MaxItemsPerSource    int         `yaml:"maxItemsPerSource"`
	TimeRangeHours       int         `yaml:"timeRangeHours"`
	Retry                RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines bounded retry with exponential backoff, shared by
// all source adapters.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"maxAttempts"`
	InitialDelayMs    int     `yaml:"initialDelayMs"`
	MaxDelayMs        int     `yaml:"maxDelayMs"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// Timeout returns the per-attempt deadline for one source call.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// DedupConfig tunes the soft (similarity) duplicate detection.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	WindowHours         int     `yaml:"windowHours"`
}

// Window returns the published-at proximity window for soft duplicates.
func (d DedupConfig) Window() time.Duration {
	return time.Duration(d.WindowHours) * time.Hour
}

// ClassifyConfig optionally overrides the built-in rule and vocabulary
// tables; empty slices keep the defaults. FilterKeywords, when set, keeps
// only items whose text contains at least one keyword.
type ClassifyConfig struct {
	Rules          []RuleConfig    `yaml:"rules"`
	Companies      []CompanyConfig `yaml:"companies"`
	Tags           []TagConfig     `yaml:"tags"`
	FilterKeywords []string        `yaml:"filterKeywords"`
}

// RuleConfig is one (category, keyword-set) classification rule. Rules are
// evaluated in order; the first match wins.
type RuleConfig struct {
	Category   string   `yaml:"category"`
	KeywordsEN []string `yaml:"keywordsEn"`
	KeywordsZH []string `yaml:"keywordsZh"`
}

// CompanyConfig is one controlled-vocabulary company with its aliases.
type CompanyConfig struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Aliases   []string `yaml:"aliases"`
	AliasesZH []string `yaml:"aliasesZh"`
}

// TagConfig is one technical-term vocabulary entry.
type TagConfig struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// StorageConfig selects the item store backend and the index location.
type StorageConfig struct {
	Type      string         `yaml:"type"`
	IndexPath string         `yaml:"indexPath"`
	JSONPath  string         `yaml:"jsonPath"`
	CSVExport string         `yaml:"csvExport"`
	Postgres  PostgresConfig `yaml:"postgres"`
	Mongo     MongoConfig    `yaml:"mongo"`
}

// PostgresConfig describes the relational backend.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// MongoConfig describes the document backend.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// SchedulerConfig enables repeated runs on a fixed interval.
type SchedulerConfig struct {
	Enabled       bool `yaml:"enabled"`
	IntervalHours int  `yaml:"intervalHours"`
}

// Interval returns the time between scheduled runs.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

// NotificationConfig wires outbound report channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
}

// TelegramConfig carries bot credentials for digest delivery.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// WebhookConfig points at an endpoint receiving the JSON run report.
type WebhookConfig struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

// SourceConfig describes one feed or listing source.
type SourceConfig struct {
	ID       string `yaml:"id"`
	Kind     string `yaml:"kind"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Language string `yaml:"language"`
	MaxItems int    `yaml:"maxItems"`
	Disabled bool   `yaml:"disabled"`
}

// SourceKinds lists the registered adapter kinds.
var SourceKinds = []string{"rss", "htmllist"}

// Load reads YAML configuration (path from NEWS_COLLECTOR_CONFIG, if set)
// on top of defaults and applies environment overrides. Validation
// failures surface as domain.ConfigurationError.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, &domain.ConfigurationError{Field: "file", Reason: fmt.Sprintf("cannot read %s: %v", path, err)}
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, &domain.ConfigurationError{Field: "file", Reason: fmt.Sprintf("cannot parse %s: %v", path, err)}
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v := os.Getenv(mongoURIEnv); v != "" {
		c.Storage.Mongo.URI = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(webhookTokenEnv); v != "" {
		c.Notifications.Webhook.Token = v
	}
}

// Validate checks the configuration before anything is fetched.
func (c *Config) Validate() error {
	if len(c.EnabledSources()) == 0 {
		return &domain.ConfigurationError{Field: "sources", Reason: "at least one enabled source is required"}
	}
	for _, src := range c.Sources {
		if src.ID == "" {
			return &domain.ConfigurationError{Field: "sources", Reason: "source id is required"}
		}
		if src.URL == "" {
			return &domain.ConfigurationError{Field: "sources." + src.ID, Reason: "url is required"}
		}
		if !validKind(src.Kind) {
			return &domain.ConfigurationError{Field: "sources." + src.ID, Reason: fmt.Sprintf("unknown kind %q", src.Kind)}
		}
		switch domain.SourceType(src.Type) {
		case domain.SourceInternational, domain.SourceDomestic:
		default:
			return &domain.ConfigurationError{Field: "sources." + src.ID, Reason: fmt.Sprintf("type must be international or domestic, got %q", src.Type)}
		}
	}
	if c.Fetch.MaxConcurrentSources < 1 {
		return &domain.ConfigurationError{Field: "fetch.maxConcurrentSources", Reason: "must be at least 1"}
	}
	if c.Fetch.TimeoutSec < 1 {
		return &domain.ConfigurationError{Field: "fetch.timeoutSec", Reason: "must be at least 1"}
	}
	if c.Fetch.Retry.MaxAttempts < 1 {
		return &domain.ConfigurationError{Field: "fetch.retry.maxAttempts", Reason: "must be at least 1"}
	}
	if c.Fetch.Retry.BackoffMultiplier < 1.0 {
		return &domain.ConfigurationError{Field: "fetch.retry.backoffMultiplier", Reason: "must be >= 1.0"}
	}
	if c.Dedup.SimilarityThreshold <= 0 || c.Dedup.SimilarityThreshold > 1 {
		return &domain.ConfigurationError{Field: "dedup.similarityThreshold", Reason: "must be in (0, 1]"}
	}
	switch c.Storage.Type {
	case "json", "postgres", "mongo":
	default:
		return &domain.ConfigurationError{Field: "storage.type", Reason: fmt.Sprintf("must be json, postgres or mongo, got %q", c.Storage.Type)}
	}
	if c.Storage.IndexPath == "" {
		return &domain.ConfigurationError{Field: "storage.indexPath", Reason: "is required"}
	}
	if c.Scheduler.Enabled && c.Scheduler.IntervalHours < 1 {
		return &domain.ConfigurationError{Field: "scheduler.intervalHours", Reason: "must be at least 1"}
	}
	return nil
}

// EnabledSources returns the sources that participate in a run.
func (c *Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

// SourceTable builds the source-metadata lookup used by the normalizer.
func (c *Config) SourceTable() map[string]domain.SourceMeta {
	table := make(map[string]domain.SourceMeta, len(c.Sources))
	for _, s := range c.Sources {
		table[s.ID] = domain.SourceMeta{
			Name:     s.Name,
			Type:     domain.SourceType(s.Type),
			Language: domain.Language(s.Language),
		}
	}
	return table
}

func validKind(kind string) bool {
	for _, k := range SourceKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Fetch.MaxConcurrentSources != 0 {
		base.Fetch.MaxConcurrentSources = override.Fetch.MaxConcurrentSources
	}
	if override.Fetch.TimeoutSec != 0 {
		base.Fetch.TimeoutSec = override.Fetch.TimeoutSec
	}
	if override.Fetch.MaxItemsPerSource != 0 {
		base.Fetch.MaxItemsPerSource = override.Fetch.MaxItemsPerSource
	}
	if override.Fetch.TimeRangeHours != 0 {
		base.Fetch.TimeRangeHours = override.Fetch.TimeRangeHours
	}
	if override.Fetch.Retry.MaxAttempts != 0 {
		base.Fetch.Retry = override.Fetch.Retry
	}

	if override.Dedup.SimilarityThreshold != 0 {
		base.Dedup.SimilarityThreshold = override.Dedup.SimilarityThreshold
	}
	if override.Dedup.WindowHours != 0 {
		base.Dedup.WindowHours = override.Dedup.WindowHours
	}

	if len(override.Classify.Rules) > 0 {
		base.Classify.Rules = override.Classify.Rules
	}
	if len(override.Classify.Companies) > 0 {
		base.Classify.Companies = override.Classify.Companies
	}
	if len(override.Classify.Tags) > 0 {
		base.Classify.Tags = override.Classify.Tags
	}
	if len(override.Classify.FilterKeywords) > 0 {
		base.Classify.FilterKeywords = override.Classify.FilterKeywords
	}

	if override.Storage.Type != "" {
		base.Storage.Type = override.Storage.Type
	}
	if override.Storage.IndexPath != "" {
		base.Storage.IndexPath = override.Storage.IndexPath
	}
	if override.Storage.JSONPath != "" {
		base.Storage.JSONPath = override.Storage.JSONPath
	}
	if override.Storage.CSVExport != "" {
		base.Storage.CSVExport = override.Storage.CSVExport
	}
	if override.Storage.Postgres.DSN != "" {
		base.Storage.Postgres = override.Storage.Postgres
	}
	if override.Storage.Mongo.URI != "" {
		base.Storage.Mongo = override.Storage.Mongo
	}

	if override.Scheduler.Enabled {
		base.Scheduler = override.Scheduler
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Webhook.Endpoint != "" {
		base.Notifications.Webhook = override.Notifications.Webhook
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Fetch: FetchConfig{
			MaxConcurrentSources: 3,
			TimeoutSec:           30,
			MaxItemsPerSource:    20,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
			},
		},
		Dedup: DedupConfig{
			SimilarityThreshold: 0.75,
			WindowHours:         48,
		},
		Storage: StorageConfig{
			Type:      "json",
			IndexPath: "./data/seen_index.json",
			JSONPath:  "./data/ai_news.json",
			Mongo:     MongoConfig{Database: "ainews", Collection: "items"},
		},
		Scheduler: SchedulerConfig{Enabled: false, IntervalHours: 24},
		Sources:   defaultSources(),
	}
}

func defaultSources() []SourceConfig {
	return []SourceConfig{
		{ID: "openai", Kind: "rss", Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml", Type: "international", Language: "en"},
		{ID: "google_ai", Kind: "rss", Name: "Google AI Blog", URL: "https://ai.googleblog.com/feeds/posts/default", Type: "international", Language: "en"},
		{ID: "huggingface", Kind: "rss", Name: "Hugging Face Blog", URL: "https://huggingface.co/blog/feed.xml", Type: "international", Language: "en"},
		{ID: "techcrunch_ai", Kind: "rss", Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Type: "international", Language: "en"},
		{ID: "mit_tech_review", Kind: "rss", Name: "MIT Technology Review AI", URL: "https://www.technologyreview.com/topic/artificial-intelligence/feed", Type: "international", Language: "en"},
		{ID: "deepmind", Kind: "rss", Name: "DeepMind Blog", URL: "https://deepmind.google/blog/rss.xml", Type: "international", Language: "en"},
		{ID: "arxiv_ai", Kind: "htmllist", Name: "arXiv AI", URL: "https://export.arxiv.org/list/cs.AI/recent", Type: "international", Language: "en"},
		{ID: "jiqizhixin", Kind: "rss", Name: "机器之心", URL: "https://www.jiqizhixin.com/rss", Type: "domestic", Language: "zh"},
		{ID: "qbitai", Kind: "rss", Name: "量子位", URL: "https://www.qbitai.com/feed", Type: "domestic", Language: "zh"},
		{ID: "leiphone_ai", Kind: "rss", Name: "雷锋网AI", URL: "https://www.leiphone.com/category/ai/feed", Type: "domestic", Language: "zh"},
	}
}
