package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

var csvHeader = []string{
	"identity_key", "title", "url", "source_id", "source_name",
	"source_type", "language", "category", "tags", "companies",
	"importance", "published_at", "fetch_time",
}

// CSVStore appends accepted items to a spreadsheet-friendly export file.
// It only ever appends; dedup already guarantees each identity key is
// accepted once.
type CSVStore struct {
	path string
}

var _ ports.ItemStore = (*CSVStore)(nil)

// NewCSVStore builds an export store writing to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Save appends the run's items, writing the header first on a fresh file.
func (s *CSVStore) Save(ctx context.Context, items []domain.ClassifiedItem, report domain.RunReport) error {
	if len(items) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure export dir: %w", err)
	}

	_, statErr := os.Stat(s.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, item := range items {
		row := []string{
			item.IdentityKey,
			item.Title,
			item.URL,
			item.SourceID,
			item.SourceName,
			string(item.SourceType),
			string(item.Language),
			string(item.Category),
			strings.Join(item.Tags, ";"),
			strings.Join(item.Companies, ";"),
			strconv.Itoa(item.Importance),
			formatTime(item.PublishedAt),
			formatTime(item.FetchTime),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
