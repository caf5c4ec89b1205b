package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/orderdesk/pkg/cache"
)

// ─── Store ────────────────────────────────────────────────────────────────────

// Store persists session data keyed by session ID.
type Store interface {
	Get(id string) (map[string]interface{}, bool)
	Set(id string, data map[string]interface{}, ttl time.Duration) error
	Delete(id string) error
}

var (
	storeMu  sync.RWMutex
	curStore Store
)

// UseStore swaps the active session store. Tests use this to inject a fresh
// memory store.
func UseStore(s Store) {
	storeMu.Lock()
	curStore = s
	storeMu.Unlock()
}

// activeStore resolves the current store: an explicitly set one, the Redis
// store when a connection is live, or the shared in-memory store.
func activeStore() Store {
	storeMu.RLock()
	s := curStore
	storeMu.RUnlock()
	if s != nil {
		return s
	}
	if cache.Available() {
		return redisStore{}
	}
	return defaultMemory
}

// ─── Redis store ──────────────────────────────────────────────────────────────

type redisStore struct{}

func (redisStore) key(id string) string { return "session:" + id }

func (rs redisStore) Get(id string) (map[string]interface{}, bool) {
	var data map[string]interface{}
	if !cache.Get(rs.key(id), &data) {
		return nil, false
	}
	return data, true
}

func (rs redisStore) Set(id string, data map[string]interface{}, ttl time.Duration) error {
	if err := cache.Set(rs.key(id), data, ttl); err != nil {
		return fmt.Errorf("session: save %s: %w", id, err)
	}
	return nil
}

func (rs redisStore) Delete(id string) error {
	return cache.Del(rs.key(id))
}

// ─── Memory store ─────────────────────────────────────────────────────────────

type memoryEntry struct {
	data      map[string]interface{}
	expiresAt time.Time
}

// MemoryStore is an in-process session store with TTL eviction. It is the
// fallback when Redis is not configured; sessions do not survive restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryStore creates a memory store and starts its eviction janitor.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{entries: make(map[string]memoryEntry)}
	go m.janitor()
	return m
}

var defaultMemory = NewMemoryStore()

// Get returns a copy of the stored data. Concurrent requests carrying the
// same cookie each get their own map, so handlers can mutate it freely.
func (m *MemoryStore) Get(id string) (map[string]interface{}, bool) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return cloneData(e.data), true
}

func (m *MemoryStore) Set(id string, data map[string]interface{}, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[id] = memoryEntry{data: cloneData(data), expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) janitor() {
	for range time.Tick(time.Minute) {
		now := time.Now()
		m.mu.Lock()
		for id, e := range m.entries {
			if now.After(e.expiresAt) {
				delete(m.entries, id)
			}
		}
		m.mu.Unlock()
	}
}
