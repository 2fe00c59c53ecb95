package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// PostgresStore persists items into news_items and run summaries into
// run_reports. Inserts conflict on identity_key and do nothing, so a
// replayed batch cannot duplicate rows.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ItemStore = (*PostgresStore)(nil)

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS news_items (
    identity_key  TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    url           TEXT NOT NULL,
    source_id     TEXT NOT NULL,
    source_name   TEXT NOT NULL,
    source_type   TEXT NOT NULL,
    language      TEXT NOT NULL,
    summary       TEXT NOT NULL DEFAULT '',
    category      TEXT NOT NULL,
    tags          TEXT[] NOT NULL DEFAULT '{}',
    companies     TEXT[] NOT NULL DEFAULT '{}',
    importance    INT NOT NULL,
    published_at  TIMESTAMPTZ,
    fetch_time    TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS run_reports (
    run_id          TEXT PRIMARY KEY,
    started_at      TIMESTAMPTZ NOT NULL,
    duration_ms     BIGINT NOT NULL,
    total_fetched   INT NOT NULL,
    accepted        INT NOT NULL,
    hard_duplicates INT NOT NULL,
    soft_duplicates INT NOT NULL,
    rejected        INT NOT NULL,
    filtered_out    INT NOT NULL,
    source_errors   INT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save writes the items and the run summary in one transaction.
func (s *PostgresStore) Save(ctx context.Context, items []domain.ClassifiedItem, report domain.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		query := s.builder.
			Insert("news_items").
			Columns(
				"identity_key", "title", "url", "source_id", "source_name",
				"source_type", "language", "summary", "category",
				"tags", "companies", "importance", "published_at", "fetch_time",
			).
			Values(
				item.IdentityKey, item.Title, item.URL, item.SourceID, item.SourceName,
				string(item.SourceType), string(item.Language), item.Summary, string(item.Category),
				pq.StringArray(item.Tags), pq.StringArray(item.Companies),
				item.Importance, nullableTime(item.PublishedAt), item.FetchTime,
			).
			Suffix("ON CONFLICT (identity_key) DO NOTHING")

		sqlStr, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("insert item %s: %w", item.IdentityKey, err)
		}
	}

	reportQuery := s.builder.
		Insert("run_reports").
		Columns(
			"run_id", "started_at", "duration_ms", "total_fetched", "accepted",
			"hard_duplicates", "soft_duplicates", "rejected", "filtered_out", "source_errors",
		).
		Values(
			report.RunID, report.StartedAt, report.Duration.Milliseconds(),
			report.TotalFetched, report.Accepted, report.HardDuplicates,
			report.SoftDuplicates, report.Rejected, report.FilteredOut,
			len(report.SourceErrors),
		)

	sqlStr, args, err := reportQuery.ToSql()
	if err != nil {
		return fmt.Errorf("build report insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	return tx.Commit()
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
