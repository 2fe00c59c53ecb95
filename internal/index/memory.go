// Package index implements the durable set of identity keys that makes
// runs incremental.
package index

import (
	"sync"
	"time"
)

// Memory is an in-process index. Contains and Add serialize on one mutex
// so Add is an atomic check-and-set even when items are processed
// concurrently. Keys are only ever added; there is no removal short of
// building a fresh index.
type Memory struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

// NewMemory returns an empty index.
func NewMemory() *Memory {
	return &Memory{keys: map[string]time.Time{}}
}

// Contains reports whether key has been recorded.
func (m *Memory) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.keys[key]
	return ok
}

// Add records key with its last-seen time and reports whether it was new.
func (m *Memory) Add(key string, seenAt time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false
	}
	m.keys[key] = seenAt
	return true
}

// Len returns the number of recorded keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// Persist is a no-op for the in-memory index.
func (m *Memory) Persist() error { return nil }

func (m *Memory) snapshot() map[string]time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]time.Time, len(m.keys))
	for k, v := range m.keys {
		out[k] = v
	}
	return out
}

func (m *Memory) restore(keys map[string]time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range keys {
		m.keys[k] = v
	}
}
