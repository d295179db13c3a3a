package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/redis"
)

type fakeClient struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeClient) GetBytes(_ context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (f *fakeClient) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeClient) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeClient) ScopeKey(scope, name string) string {
	return "sf:scope:" + scope + ":" + name
}

func (f *fakeClient) Ping(context.Context) error { return f.err }

func TestStoreNamespacesScopedKeys(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := New(client, 24*time.Hour)

	key := storage.ScopedKey("abc", "cart")
	if err := store.Set(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := client.data["sf:scope:abc:cart"]; !ok {
		t.Fatalf("expected namespaced key, got %v", client.data)
	}
	if client.ttls["sf:scope:abc:cart"] != 24*time.Hour {
		t.Fatalf("ttl not forwarded")
	}

	got, err := store.Get(ctx, key)
	if err != nil || string(got) != "[]" {
		t.Fatalf("unexpected get %q %v", got, err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorePropagatesClientErrors(t *testing.T) {
	client := newFakeClient()
	client.err = errors.New("connection refused")
	store := New(client, 0)

	if _, err := store.Get(context.Background(), "abc/cart"); err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected raw client error, got %v", err)
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
}
