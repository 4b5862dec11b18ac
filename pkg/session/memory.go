package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default in-process session store. Suitable for a
// single server; use RedisStore or SQLStore behind a load balancer.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memEntry
	closed   bool
	done     chan struct{}
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryOption configures MemoryStore behavior.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	sweepInterval time.Duration
}

// WithSweepInterval sets how often expired sessions are removed.
// Default: one minute.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) { c.sweepInterval = d }
}

// NewMemoryStore creates an in-memory store with a background sweeper.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := &memoryConfig{sweepInterval: time.Minute}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &MemoryStore{
		sessions: make(map[string]*memEntry),
		done:     make(chan struct{}),
	}
	go s.sweepLoop(cfg.sweepInterval)
	return s
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, id string, data []byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed{}
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	s.sessions[id] = &memEntry{data: buf, expiresAt: expiresAt}
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed{}
	}
	e, ok := s.sessions[id]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	buf := make([]byte, len(e.data))
	copy(buf, e.data)
	return buf, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed{}
	}
	delete(s.sessions, id)
	return nil
}

// Touch implements Store.
func (s *MemoryStore) Touch(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed{}
	}
	if e, ok := s.sessions[id]; ok {
		e.expiresAt = expiresAt
	}
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close implements Store and stops the sweeper.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	s.sessions = nil
	return nil
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
