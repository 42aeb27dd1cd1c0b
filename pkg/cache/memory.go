package cache

import (
	"sync"
	"time"
)

// MemoryStore is a process-local key/value cache with a single, coarse TTL:
// once the stamp is older than the TTL the whole store is dropped, not
// individual entries. Callers that mutate backing state must still call
// Invalidate/InvalidateAll themselves.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]interface{}
	stampedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]interface{}),
		ttl:     ttl,
		now:     now,
	}
}

func (s *MemoryStore) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	v, ok := s.entries[key]
	return v, ok
}

func (s *MemoryStore) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	if len(s.entries) == 0 {
		s.stampedAt = s.now()
	}
	s.entries[key] = value
}

func (s *MemoryStore) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MemoryStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]interface{})
}

func (s *MemoryStore) expireLocked() {
	if s.ttl <= 0 || len(s.entries) == 0 {
		return
	}
	if s.now().Sub(s.stampedAt) > s.ttl {
		s.entries = make(map[string]interface{})
	}
}
