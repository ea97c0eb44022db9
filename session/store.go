package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when the backing store cannot be reached.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrTokenCollision is returned when a session token is already mapped.
var ErrTokenCollision = errors.New("session token already exists")

// Store persists session-token to identity mappings.
type Store interface {
	// Save maps token to identity. ttl <= 0 means no expiry.
	Save(ctx context.Context, token, identity string, ttl time.Duration) error
	// Lookup returns the identity for token; found is false for unknown tokens.
	Lookup(ctx context.Context, token string) (identity string, found bool, err error)
}

// MemoryStore is a process-local [Store]. Inserts and reads of unrelated tokens never
// contend on a shared lock. TTLs are ignored: mappings live until the process exits.
type MemoryStore struct {
	entries sync.Map
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, token, identity string, _ time.Duration) error {
	if _, loaded := s.entries.LoadOrStore(token, identity); loaded {
		return ErrTokenCollision
	}
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, token string) (string, bool, error) {
	v, ok := s.entries.Load(token)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

// Len counts stored mappings. It walks the whole map.
func (s *MemoryStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// DefaultRedisPrefix namespaces session keys in Redis.
const DefaultRedisPrefix = "gs:sess"

// RedisStore is a Redis-backed [Store] for deployments that run several instances.
//
//	Performance: 1 Redis command per Save or Lookup.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore]; an empty prefix selects [DefaultRedisPrefix].
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *RedisStore) Save(ctx context.Context, token, identity string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	ok, err := s.redis.SetNX(ctx, s.key(token), identity, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrTokenCollision
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (string, bool, error) {
	identity, err := s.redis.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return identity, true, nil
}
