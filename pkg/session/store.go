package session

import (
	"context"
	"fmt"
	"time"
)

// Store is a session persistence backend. Implementations must be safe
// for concurrent use.
type Store interface {
	// Save persists session bytes. Overwrites an existing id.
	Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error

	// Load retrieves session bytes. Returns (nil, nil) when the id is
	// unknown or expired; errors are reserved for backend failures.
	Load(ctx context.Context, id string) ([]byte, error)

	// Delete removes a session. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error

	// Touch extends the expiry without rewriting the payload.
	Touch(ctx context.Context, id string, expiresAt time.Time) error

	// Close releases backend resources.
	Close() error
}

// ErrStoreClosed is returned by operations on a closed store.
type ErrStoreClosed struct{}

func (ErrStoreClosed) Error() string { return "session: store closed" }

// CookieName is the session cookie used by the Manager.
const CookieName = "isora_session"

// Manager ties a Store to the request/response cycle: it resolves the
// session for an incoming cookie, and persists dirty sessions with a
// sliding expiry.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session manager. ttl defaults to 24h.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, ttl: ttl}
}

// TTL returns the sliding session lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Resolve returns the session for id, or a fresh session when id is
// empty or unknown. The bool reports whether the session already
// existed in the store.
func (m *Manager) Resolve(ctx context.Context, id string) (*Session, bool, error) {
	if id == "" {
		return NewSession(), false, nil
	}
	data, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("session: load %s: %w", id, err)
	}
	if data == nil {
		return NewSession(), false, nil
	}
	sess, err := Unmarshal(data)
	if err != nil {
		// Corrupt payload: drop it and start over rather than failing
		// the request.
		_ = m.store.Delete(ctx, id)
		return NewSession(), false, nil
	}
	sess.Touch()
	return sess, true, nil
}

// Persist saves a dirty session and slides the expiry of a clean one.
func (m *Manager) Persist(ctx context.Context, sess *Session) error {
	expires := time.Now().Add(m.ttl)
	if !sess.Dirty() {
		return m.store.Touch(ctx, sess.ID(), expires)
	}
	data, err := sess.Marshal()
	if err != nil {
		return err
	}
	return m.store.Save(ctx, sess.ID(), data, expires)
}

// Destroy removes a session from the store.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// Close closes the underlying store.
func (m *Manager) Close() error { return m.store.Close() }
