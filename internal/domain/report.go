package domain

import "time"

// SourceFailure records one source that produced no results this run.
type SourceFailure struct {
	SourceID string `json:"source_id"`
	Error    string `json:"error"`
}

// RunReport summarizes one pipeline execution.
type RunReport struct {
	RunID          string          `json:"run_id"`
	StartedAt      time.Time       `json:"started_at"`
	Duration       time.Duration   `json:"duration"`
	TotalFetched   int             `json:"total_fetched"`
	Accepted       int             `json:"accepted"`
	HardDuplicates int             `json:"hard_duplicates"`
	SoftDuplicates int             `json:"soft_duplicates"`
	Rejected       int             `json:"rejected"`
	FilteredOut    int             `json:"filtered_out"`
	SourceErrors   []SourceFailure `json:"source_errors,omitempty"`
	CategoryCounts map[Category]int `json:"category_counts"`
	SourceCounts   map[string]int   `json:"source_counts"`
}

// NewRunReport initializes the count maps so callers can increment directly.
func NewRunReport(runID string, startedAt time.Time) RunReport {
	return RunReport{
		RunID:          runID,
		StartedAt:      startedAt,
		CategoryCounts: map[Category]int{},
		SourceCounts:   map[string]int{},
	}
}
