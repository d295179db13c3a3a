package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/redis"
)

type client interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ScopeKey(scope, name string) string
	Ping(ctx context.Context) error
}

// Store keeps scoped values in Redis. Keys handed to it are already scope-qualified
// ("<scope>/<name>") and are namespaced through the client's key builder.
type Store struct {
	client client
	ttl    time.Duration
}

// New returns a Redis-backed store; ttl <= 0 keeps values forever.
func New(c client, ttl time.Duration) *Store {
	return &Store{client: c, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.GetBytes(ctx, s.key(key))
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, s.ttl)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key))
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Store) key(key string) string {
	scope, name := storage.SplitKey(key)
	return s.client.ScopeKey(scope, name)
}
