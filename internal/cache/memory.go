package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	key      string
	value    []byte
	storedAt time.Time
}

// MemoryCache is an in-process Cache bounded by entry count and TTL.
// When full, the oldest stored entry is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List // front is oldest
	entries    map[string]*list.Element
	now        func() time.Time
}

// NewMemoryCache creates a MemoryCache. A non-positive maxEntries means
// unbounded and a non-positive ttl means entries never expire.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns a copy of the value stored under key if it has not expired.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*memoryEntry)
	if m.expired(e) {
		m.removeElement(el)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores value under key, refreshing its age.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		m.removeElement(el)
	}
	e := &memoryEntry{key: key, value: append([]byte(nil), value...), storedAt: m.now()}
	m.entries[key] = m.order.PushBack(e)

	for m.maxEntries > 0 && m.order.Len() > m.maxEntries {
		m.removeElement(m.order.Front())
	}
	return nil
}

// Delete removes key.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		m.removeElement(el)
	}
	return nil
}

// EvictOlderThan removes every entry stored more than age ago.
func (m *MemoryCache) EvictOlderThan(_ context.Context, age time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-age)
	removed := 0
	for el := m.order.Front(); el != nil; {
		e := el.Value.(*memoryEntry)
		if !e.storedAt.Before(cutoff) {
			break
		}
		next := el.Next()
		m.removeElement(el)
		removed++
		el = next
	}
	return removed, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Janitor evicts expired entries every interval until ctx is done.
func (m *MemoryCache) Janitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = m.EvictOlderThan(ctx, m.ttl)
		}
	}
}

func (m *MemoryCache) expired(e *memoryEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.storedAt) > m.ttl
}

func (m *MemoryCache) removeElement(el *list.Element) {
	e := m.order.Remove(el).(*memoryEntry)
	delete(m.entries, e.key)
}
