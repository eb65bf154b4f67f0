package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bilgisen/khabar/internal/models"
)

type entry struct {
	items  []models.NewsItem
	expiry time.Time
}

// Memory is a process-local Store with lazy expiry. There is no background
// sweep and no size bound; the key space is one entry per selector.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     Clock
}

// NewMemory creates a memory cache whose entries live for ttl. A nil clock
// uses time.Now.
func NewMemory(ttl time.Duration, clock Clock) *Memory {
	if clock == nil {
		clock = time.Now
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     clock,
	}
}

// Get returns the cached items for key. An entry at or past its expiry is
// evicted and reported absent.
func (m *Memory) Get(_ context.Context, key string) ([]models.NewsItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiry) {
		delete(m.entries, key)
		return nil, false
	}
	return e.items, true
}

// Put stores items under key, replacing any previous entry.
func (m *Memory) Put(_ context.Context, key string, items []models.NewsItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry{
		items:  items,
		expiry: m.now().Add(m.ttl),
	}
}

// Delete drops key.
func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Len returns the number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
