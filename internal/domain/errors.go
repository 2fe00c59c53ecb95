package domain

import "fmt"

// ValidationError marks a malformed raw record. The pipeline skips the
// record and keeps going.
type ValidationError struct {
	SourceID string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.SourceID == "" {
		return fmt.Sprintf("invalid record: %s", e.Reason)
	}
	return fmt.Sprintf("invalid record from %s: %s", e.SourceID, e.Reason)
}

// TransportError marks a source that stayed unreachable after retries.
// Non-fatal: the run continues with the remaining sources.
type TransportError struct {
	SourceID string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("source %s unreachable: %v", e.SourceID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IndexCorruptionError means the persisted incremental index could not be
// read back. Fatal: silently losing history would reprocess everything.
type IndexCorruptionError struct {
	Path string
	Err  error
}

func (e *IndexCorruptionError) Error() string {
	return fmt.Sprintf("incremental index %s is corrupt: %v", e.Path, e.Err)
}

func (e *IndexCorruptionError) Unwrap() error { return e.Err }

// ConfigurationError marks invalid or missing configuration. Fatal at
// startup, before any fetching begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}
