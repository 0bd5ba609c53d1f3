// Package memory is a TTL cache used by the response cache middleware.
package memory

import (
	"sync"
	"time"
)

type entry struct {
	content   []byte
	expiresAt time.Time
}

// Storage ...
type Storage struct {
	mu sync.RWMutex
	m  map[string]entry
}

// NewStorage creates new instance of Storage.
func NewStorage() *Storage {
	return &Storage{
		m: make(map[string]entry),
	}
}

// Get returns cached content or nil when the key is absent or expired.
// Expired entries are dropped lazily on the next Set.
func (s *Storage) Get(key string) []byte {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil
	}

	return e.content
}

// Set stores content for the given duration.
func (s *Storage) Set(key string, content []byte, duration time.Duration) {
	now := time.Now()

	s.mu.Lock()
	for k, e := range s.m {
		if now.After(e.expiresAt) {
			delete(s.m, k)
		}
	}
	s.m[key] = entry{
		content:   content,
		expiresAt: now.Add(duration),
	}
	s.mu.Unlock()
}
