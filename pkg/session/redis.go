package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists sessions in Redis, for multi-server deployments
// with shared session state. Expiry is delegated to Redis TTLs, so no
// sweeper is needed.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures RedisStore behavior.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the Redis key prefix. Default: "isora:session:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a Redis-backed store. The client may be a
// single-node *redis.Client or a cluster client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "isora:session:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, id)
	}
	return s.client.Set(ctx, s.key(id), data, ttl).Err()
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Touch implements Store. Missing ids are not an error, matching the
// Store contract.
func (s *RedisStore) Touch(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, id)
	}
	return s.client.Expire(ctx, s.key(id), ttl).Err()
}

// Close implements Store.
func (s *RedisStore) Close() error { return s.client.Close() }
