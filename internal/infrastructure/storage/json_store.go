// Package storage implements the item-store backends: JSON file,
// PostgreSQL, MongoDB and a CSV export.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"AINewsCollector/internal/domain"
	"AINewsCollector/internal/ports"
)

// JSONStore keeps all collected items in one JSON array on disk, merged
// by identity key across runs, plus a sibling last_report.json with the
// most recent run summary.
type JSONStore struct {
	path string
}

var _ ports.ItemStore = (*JSONStore)(nil)

// NewJSONStore builds a store writing to path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Save merges the new items into the existing file. Items already present
// under the same identity key are left untouched, so a re-run never
// rewrites history. The result is ordered newest fetch first.
func (s *JSONStore) Save(ctx context.Context, items []domain.ClassifiedItem, report domain.RunReport) error {
	existing, err := s.load()
	if err != nil {
		return err
	}

	byKey := make(map[string]int, len(existing))
	for i, item := range existing {
		byKey[item.IdentityKey] = i
	}
	for _, item := range items {
		if _, ok := byKey[item.IdentityKey]; ok {
			continue
		}
		byKey[item.IdentityKey] = len(existing)
		existing = append(existing, item)
	}

	sort.SliceStable(existing, func(i, j int) bool {
		return existing[i].FetchTime.After(existing[j].FetchTime)
	})

	if err := writeJSONAtomic(s.path, existing); err != nil {
		return fmt.Errorf("write items: %w", err)
	}

	reportPath := filepath.Join(filepath.Dir(s.path), "last_report.json")
	if err := writeJSONAtomic(reportPath, report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Path returns the backing file location.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) load() ([]domain.ClassifiedItem, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	var items []domain.ClassifiedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", s.path, err)
	}
	return items, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
