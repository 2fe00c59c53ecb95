package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"AINewsCollector/internal/domain"
)

// File is a Memory index backed by a JSON file mapping identity key to the
// RFC3339 time it was last seen.
type File struct {
	*Memory
	path string
}

// Load reads the index from path. A missing file yields an empty index (a
// first run is not a failure); unreadable or unparsable content yields a
// domain.IndexCorruptionError, which is fatal to the run.
func Load(path string) (*File, error) {
	f := &File{Memory: NewMemory(), path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, &domain.IndexCorruptionError{Path: path, Err: err}
	}

	var stored map[string]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, &domain.IndexCorruptionError{Path: path, Err: err}
	}

	keys := make(map[string]time.Time, len(stored))
	for k, v := range stored {
		seenAt, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, &domain.IndexCorruptionError{Path: path, Err: fmt.Errorf("key %s: %w", k, err)}
		}
		keys[k] = seenAt
	}
	f.restore(keys)
	return f, nil
}

// Persist writes the current key set to disk. The write goes to a temp
// file in the same directory, is synced, then renamed over the target, so
// a crash mid-write can never leave a half-written index to be read back.
func (f *File) Persist() error {
	snapshot := f.snapshot()
	stored := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		stored[k] = v.UTC().Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("ensure index dir: %w", err)
	}
	if err := writeFileAtomic(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Path returns the backing file location.
func (f *File) Path() string { return f.path }

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	// Sync the directory so the rename itself survives a crash.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
