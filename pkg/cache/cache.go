package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// noopCache satisfies Cache when no Redis address is configured. Every read
// misses and every write succeeds, so callers always fall through to the
// source of truth.
type noopCache struct{}

// NewNoopCache returns a Cache that stores nothing.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (noopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, key string) error { return nil }
