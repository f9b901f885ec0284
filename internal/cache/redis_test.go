package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLKey(t *testing.T) {
	assert.Equal(t, "url_abc1234", URLKey("abc1234"))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	// nothing listens on port 1
	c, err := NewRedisCache("redis://127.0.0.1:1/0")

	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, err := c.Get(ctx, "url_docs")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "url_docs", "https://example.com", 0))
	val, err := c.Get(ctx, "url_docs")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", val)

	require.NoError(t, c.Delete(ctx, "url_docs"))
	_, err = c.Get(ctx, "url_docs")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "url_brief", "https://example.com", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "url_brief")
	assert.ErrorIs(t, err, ErrMiss)
}
