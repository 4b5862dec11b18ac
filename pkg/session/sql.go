package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Dialect selects placeholder syntax for SQLStore queries.
type Dialect int

const (
	// DialectSQLite uses ? placeholders.
	DialectSQLite Dialect = iota
	// DialectPostgres uses $1, $2 placeholders.
	DialectPostgres
	// DialectMySQL uses ? placeholders.
	DialectMySQL
)

// SQLStore persists sessions in a SQL database via database/sql. It
// works with any driver; the expected schema is:
//
//	CREATE TABLE isora_sessions (
//	    id         TEXT PRIMARY KEY,
//	    data       BLOB NOT NULL,
//	    expires_at TIMESTAMP NOT NULL
//	);
//	CREATE INDEX idx_isora_sessions_expires ON isora_sessions (expires_at);
type SQLStore struct {
	db      *sql.DB
	table   string
	dialect Dialect
	done    chan struct{}
	once    sync.Once
}

// SQLOption configures SQLStore behavior.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	table         string
	dialect       Dialect
	sweepInterval time.Duration
}

// WithTable sets the table name. Default: "isora_sessions".
func WithTable(name string) SQLOption {
	return func(c *sqlConfig) { c.table = name }
}

// WithDialect sets the placeholder dialect. Default: DialectSQLite.
func WithDialect(d Dialect) SQLOption {
	return func(c *sqlConfig) { c.dialect = d }
}

// WithSQLSweepInterval sets how often expired rows are deleted.
// Zero disables the sweeper. Default: five minutes.
func WithSQLSweepInterval(d time.Duration) SQLOption {
	return func(c *sqlConfig) { c.sweepInterval = d }
}

// NewSQLStore creates a SQL-backed store on an open database handle.
func NewSQLStore(db *sql.DB, opts ...SQLOption) *SQLStore {
	cfg := &sqlConfig{
		table:         "isora_sessions",
		dialect:       DialectSQLite,
		sweepInterval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &SQLStore{
		db:      db,
		table:   cfg.table,
		dialect: cfg.dialect,
		done:    make(chan struct{}),
	}
	if cfg.sweepInterval > 0 {
		go s.sweepLoop(cfg.sweepInterval)
	}
	return s
}

// EnsureSchema creates the sessions table when absent. Convenience for
// SQLite deployments; run migrations yourself elsewhere.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`, s.table))
	return err
}

// placeholders renders $1..$n or ?..? depending on dialect.
func (s *SQLStore) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Save implements Store with an upsert.
func (s *SQLStore) Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	q := fmt.Sprintf(
		`INSERT INTO %s (id, data, expires_at) VALUES (%s, %s, %s)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		s.table, s.placeholder(1), s.placeholder(2), s.placeholder(3))
	if s.dialect == DialectMySQL {
		q = fmt.Sprintf(
			`REPLACE INTO %s (id, data, expires_at) VALUES (?, ?, ?)`, s.table)
	}
	_, err := s.db.ExecContext(ctx, q, id, data, expiresAt)
	return err
}

// Load implements Store.
func (s *SQLStore) Load(ctx context.Context, id string) ([]byte, error) {
	q := fmt.Sprintf(
		`SELECT data, expires_at FROM %s WHERE id = %s`,
		s.table, s.placeholder(1))

	var data []byte
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx, q, id).Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(expiresAt) {
		return nil, nil
	}
	return data, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, s.table, s.placeholder(1))
	_, err := s.db.ExecContext(ctx, q, id)
	return err
}

// Touch implements Store.
func (s *SQLStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	q := fmt.Sprintf(
		`UPDATE %s SET expires_at = %s WHERE id = %s`,
		s.table, s.placeholder(1), s.placeholder(2))
	_, err := s.db.ExecContext(ctx, q, expiresAt, id)
	return err
}

// Close implements Store. The database handle belongs to the caller
// and is not closed here.
func (s *SQLStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *SQLStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			q := fmt.Sprintf(`DELETE FROM %s WHERE expires_at < %s`, s.table, s.placeholder(1))
			_, _ = s.db.Exec(q, time.Now())
		}
	}
}
