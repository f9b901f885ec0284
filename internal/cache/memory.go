package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache returns a Cache held in process memory. Entries are not
// shared between instances, so it only suits single-instance deployments.
func NewMemoryCache() Cache {
	return &memoryCache{store: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return "", ErrMiss
	}
	s, ok := val.(string)
	if !ok {
		return "", ErrMiss
	}
	return s, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	m.store.Set(key, value, expiration)
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.store.Delete(key)
	return nil
}
