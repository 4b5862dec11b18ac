// Package session provides cookie-identified sessions with pluggable
// persistence backends (memory, Redis, SQL).
//
// Sessions carry server-only values; they are never part of the
// hydration snapshot. Loaders read session values to personalize state,
// and handlers write them for later requests.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	ierrors "github.com/isora-dev/isora/internal/errors"
)

// Session is one client's server-side state, loaded at the start of a
// request and saved after the response when dirty.
type Session struct {
	mu     sync.RWMutex
	id     string
	values map[string]json.RawMessage
	dirty  bool

	createdAt  time.Time
	lastActive time.Time
}

// NewSession creates a fresh session with a random id.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		id:         newSessionID(),
		values:     make(map[string]json.RawMessage),
		dirty:      true,
		createdAt:  now,
		lastActive: now,
	}
}

func newSessionID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Set stores a JSON-encodable value under key.
func (s *Session) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return ierrors.From(err, "I502")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
	s.dirty = true
	return nil
}

// Get decodes the value under key into out. Returns false when absent.
func (s *Session) Get(key string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, ierrors.From(err, "I502")
	}
	return true, nil
}

// GetString is a convenience accessor for string values.
func (s *Session) GetString(key string) string {
	var v string
	if ok, err := s.Get(key, &v); err != nil || !ok {
		return ""
	}
	return v
}

// Delete removes a key.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Dirty reports whether the session changed since load.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Touch updates the last-active timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// envelope is the wire form persisted by stores.
type envelope struct {
	ID         string                     `json:"id"`
	Values     map[string]json.RawMessage `json:"values,omitempty"`
	CreatedAt  time.Time                  `json:"created_at"`
	LastActive time.Time                  `json:"last_active"`
	Version    int                        `json:"version"`
}

// serializationVersion is bumped on breaking changes to the envelope.
const serializationVersion = 1

// Marshal serializes the session for persistence.
func (s *Session) Marshal() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(envelope{
		ID:         s.id,
		Values:     s.values,
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
		Version:    serializationVersion,
	})
}

// Unmarshal restores a session from persisted bytes.
func Unmarshal(data []byte) (*Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ierrors.From(err, "I502")
	}
	if env.Values == nil {
		env.Values = make(map[string]json.RawMessage)
	}
	return &Session{
		id:         env.ID,
		values:     env.Values,
		createdAt:  env.CreatedAt,
		lastActive: env.LastActive,
	}, nil
}
