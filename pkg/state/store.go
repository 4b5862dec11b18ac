// Package state implements the per-request hydration store.
//
// Loaders and handlers write values into a Store while a request is
// being served; the document shell serializes the store to JSON and
// inlines it so the client can reinitialize its own store from the
// exact state the markup was rendered from. The state travels once,
// server to client, and the only contract is JSON-serializability.
//
// A Store is created per request. Sharing one Store across requests
// leaks one user's data into another's markup, which is why App never
// exposes a way to do it.
package state

import (
	"bytes"
	"sort"
	"sync"

	"github.com/bytedance/sonic"

	ierrors "github.com/isora-dev/isora/internal/errors"
)

// Store holds the state snapshot for one request. Safe for concurrent
// use: loaders run in parallel and typically each write their own keys.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
}

// New creates an empty per-request store.
func New() *Store {
	return &Store{values: make(map[string]any)}
}

// Set stores a value under key. The value must be JSON-encodable;
// Snapshot surfaces the error otherwise.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot serializes the store to a JSON object with deterministic key
// order, safe for inline embedding in an HTML script element: "<",
// U+2028, and U+2029 are escaped so the payload can never terminate the
// surrounding script context.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := sonic.Marshal(k)
		if err != nil {
			return nil, ierrors.From(err, "I401")
		}
		buf.Write(escapeInline(kb))
		buf.WriteByte(':')
		vb, err := sonic.Marshal(s.values[k])
		if err != nil {
			return nil, ierrors.From(err, "I401")
		}
		buf.Write(escapeInline(vb))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// escapeInline rewrites characters that are dangerous inside an inline
// <script> payload. JSON strings are the only place they can occur, so
// a byte-level rewrite is safe.
func escapeInline(b []byte) []byte {
	if !needsEscape(b) {
		return b
	}
	var out bytes.Buffer
	out.Grow(len(b) + 16)
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '<':
			out.WriteString(`\u003c`)
		case b[i] == '>':
			out.WriteString(`\u003e`)
		case b[i] == '&':
			out.WriteString(`\u0026`)
		// U+2028 and U+2029 are E2 80 A8/A9 in UTF-8. Legal in JSON
		// strings, line terminators in JavaScript.
		case b[i] == 0xE2 && i+2 < len(b) && b[i+1] == 0x80 && (b[i+2] == 0xA8 || b[i+2] == 0xA9):
			if b[i+2] == 0xA8 {
				out.WriteString(`\u2028`)
			} else {
				out.WriteString(`\u2029`)
			}
			i += 2
		default:
			out.WriteByte(b[i])
		}
	}
	return out.Bytes()
}

func needsEscape(b []byte) bool {
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '<', '>', '&':
			return true
		case 0xE2:
			if i+2 < len(b) && b[i+1] == 0x80 && (b[i+2] == 0xA8 || b[i+2] == 0xA9) {
				return true
			}
		}
	}
	return false
}
