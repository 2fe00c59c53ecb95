package index

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"AINewsCollector/internal/domain"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	idx, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file must not fail: %v", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("expected empty index, got %d keys", idx.Len())
	}
}

func TestPersistAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "seen.json")
	idx, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	at := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	idx.Add("k1", at)
	idx.Add("k2", at.Add(time.Hour))

	if err := idx.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected 2 keys after reload, got %d", reloaded.Len())
	}
	if !reloaded.Contains("k1") || !reloaded.Contains("k2") {
		t.Fatal("keys lost across persist/reload")
	}
	if reloaded.Add("k1", at) {
		t.Fatal("reloaded key must not be addable again")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	var cerr *domain.IndexCorruptionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected IndexCorruptionError, got %v", err)
	}
	if cerr.Path != path {
		t.Fatalf("error should carry the path, got %q", cerr.Path)
	}
}

func TestLoadBadTimestamp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen.json")
	if err := os.WriteFile(path, []byte(`{"k1":"not-a-time"}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	var cerr *domain.IndexCorruptionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected IndexCorruptionError, got %v", err)
	}
}

func TestMemoryAddIsCheckAndSet(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	at := time.Now()

	const workers = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Add("same", at) {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly one winner, got %d", count)
	}
	if m.Len() != 1 {
		t.Fatalf("expected one key, got %d", m.Len())
	}
}
