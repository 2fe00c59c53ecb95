// Package app wires configuration to the pipeline and owns the process
// lifecycle.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"AINewsCollector/internal/classify"
	"AINewsCollector/internal/config"
	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/index"
	"AINewsCollector/internal/infrastructure/htmllist"
	"AINewsCollector/internal/infrastructure/rss"
	"AINewsCollector/internal/infrastructure/scheduler"
	"AINewsCollector/internal/infrastructure/storage"
	"AINewsCollector/internal/infrastructure/telegram"
	"AINewsCollector/internal/infrastructure/webhook"
	"AINewsCollector/internal/normalize"
	"AINewsCollector/internal/ports"
	"AINewsCollector/internal/source"
	"AINewsCollector/internal/usecase"
)

// Application holds the wired pipeline and its scheduler.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	shutdown []func(context.Context) error
}

// New wires every component from configuration. Construction fails on
// invalid sources, an unreadable index or an unreachable database.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	registry := source.NewRegistry()
	registry.Register(rss.Builder{})
	registry.Register(htmllist.Builder{})

	adapters, err := registry.Adapters(cfg.EnabledSources(), cfg.Fetch)
	if err != nil {
		return nil, err
	}

	idx, err := index.Load(cfg.Storage.IndexPath)
	if err != nil {
		return nil, err
	}
	logger.Info("index loaded", "path", idx.Path(), "keys", idx.Len())

	application := &Application{cfg: cfg, logger: logger}

	store, err := application.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	var notifiers []ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifiers = append(notifiers, telegram.NewNotifier(tg.BotToken, tg.ChatID))
	}
	if wh := cfg.Notifications.Webhook; wh.Endpoint != "" {
		notifiers = append(notifiers, webhook.NewNotifier(wh.Endpoint, wh.Token))
	}

	application.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Logger:     logger.With("component", "pipeline"),
		Adapters:   adapters,
		Normalizer: normalize.New(cfg.SourceTable(), time.Now),
		Classifier: buildClassifier(cfg.Classify),
		Index:      idx,
		Store:      store,
		Notifiers:  notifiers,
		Fetch:      cfg.Fetch,
		Dedup:      cfg.Dedup,
		Filter:     cfg.Classify.FilterKeywords,
	})

	return application, nil
}

// Run executes a single collection, or keeps collecting on the configured
// interval until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close(ctx)

	if !a.cfg.Scheduler.Enabled {
		_, err := a.pipeline.Run(ctx)
		return err
	}

	ticker := scheduler.NewTicker(a.cfg.Scheduler.Interval())
	err := ticker.Start(ctx, func(at time.Time) {
		if _, runErr := a.pipeline.Run(ctx); runErr != nil {
			a.logger.Error("scheduled run failed", "at", at, "error", runErr)
		}
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return ticker.Stop(context.Background())
}

func (a *Application) buildStore(ctx context.Context) (ports.ItemStore, error) {
	var primary ports.ItemStore

	switch a.cfg.Storage.Type {
	case "json":
		primary = storage.NewJSONStore(a.cfg.Storage.JSONPath)
	case "postgres":
		db, err := sql.Open("postgres", a.cfg.Storage.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		pg := storage.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.shutdown = append(a.shutdown, func(context.Context) error { return db.Close() })
		primary = pg
	case "mongo":
		mongoCfg := a.cfg.Storage.Mongo
		ms, err := storage.NewMongoStore(ctx, mongoCfg.URI, mongoCfg.Database, mongoCfg.Collection)
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, ms.Close)
		primary = ms
	default:
		return nil, fmt.Errorf("unknown storage type %q", a.cfg.Storage.Type)
	}

	if a.cfg.Storage.CSVExport != "" {
		return storage.NewFanout(primary, storage.NewCSVStore(a.cfg.Storage.CSVExport)), nil
	}
	return primary, nil
}

func (a *Application) close(ctx context.Context) {
	for _, fn := range a.shutdown {
		if err := fn(ctx); err != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
}

// buildClassifier maps configured overrides onto the classifier; empty
// sections keep the built-in tables.
func buildClassifier(cfg config.ClassifyConfig) *classify.Classifier {
	var rules []classify.Rule
	for _, r := range cfg.Rules {
		rules = append(rules, classify.Rule{
			Category:   domain.Category(r.Category),
			KeywordsEN: r.KeywordsEN,
			KeywordsZH: r.KeywordsZH,
		})
	}

	var companies []classify.Company
	for _, c := range cfg.Companies {
		companies = append(companies, classify.Company{
			Name:      c.Name,
			Type:      domain.SourceType(c.Type),
			Aliases:   c.Aliases,
			AliasesZH: c.AliasesZH,
		})
	}

	var tags []classify.Tag
	for _, t := range cfg.Tags {
		tags = append(tags, classify.Tag{Name: t.Name, Aliases: t.Aliases})
	}

	return classify.New(rules, companies, tags, classify.ImportancePolicy{})
}
