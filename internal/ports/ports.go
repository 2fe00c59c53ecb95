package ports

import (
	"context"
	"time"

	"AINewsCollector/internal/domain"
)

// SourceAdapter yields raw records for one configured source. A call must
// respect the deadline on ctx; partial data with no error is allowed.
type SourceAdapter interface {
	SourceID() string
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// IncrementalIndex is the durable set of identity keys seen by earlier
// runs. Add is an atomic check-and-set: it returns true only for the
// first caller of a given key. Membership is only ever added during a run.
type IncrementalIndex interface {
	Contains(key string) bool
	Add(key string, seenAt time.Time) bool
	Len() int
	Persist() error
}

// ItemStore receives the accepted items of a run together with its report.
// The encoding (document file, relational table, tabular export) is the
// store's business.
type ItemStore interface {
	Save(ctx context.Context, items []domain.ClassifiedItem, report domain.RunReport) error
}

// Notifier receives the run report for alerting. Failures are logged, not
// fatal: the report exists whether or not anyone listens.
type Notifier interface {
	PublishReport(ctx context.Context, report domain.RunReport) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
