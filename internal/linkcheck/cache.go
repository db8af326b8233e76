package linkcheck

import (
	"context"
	"sync"
	"time"
)

// CacheEntry is a stored verification result for one destination URL.
type CacheEntry struct {
	URL             string    `json:"url"`
	Status          int       `json:"status"`
	IsValid         bool      `json:"is_valid"`
	Error           string    `json:"error,omitempty"`
	LastChecked     time.Time `json:"last_checked"`
	FailureCount    int       `json:"failure_count"`
	FirstFailedAt   time.Time `json:"first_failed_at,omitempty"`
	ConsecutiveFail bool      `json:"consecutive_fail"`
}

// ResultCache stores verification results between runs so repeated builds
// do not hammer external hosts. Implementations must be safe for
// concurrent use.
type ResultCache interface {
	Get(ctx context.Context, url string) (*CacheEntry, error)
	Set(ctx context.Context, entry *CacheEntry) error
	Close() error
}

// MemoryCache is the in-process default used by one-shot builds where no
// NATS bucket is configured. Entries live for the duration of the run.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*CacheEntry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*CacheEntry)}
}

// Get returns the stored entry for url, or nil when absent.
func (m *MemoryCache) Get(_ context.Context, url string) (*CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[url]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

// Set stores a copy of the entry.
func (m *MemoryCache) Set(_ context.Context, entry *CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.URL] = &cp
	return nil
}

// Close is a no-op for the in-process cache.
func (m *MemoryCache) Close() error { return nil }
