package hasher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPool_HashAndCompare(t *testing.T) {
	p := NewPool(bcrypt.MinCost, 2)
	defer p.Close()
	ctx := context.Background()

	hash, err := p.Hash(ctx, "correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	ok, err := p.Compare(ctx, "correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Compare(ctx, "wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPool_SaltedHashesDiffer(t *testing.T) {
	p := NewPool(bcrypt.MinCost, 1)
	defer p.Close()

	first, err := p.Hash(context.Background(), "password1")
	require.NoError(t, err)
	second, err := p.Hash(context.Background(), "password1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPool_CompareMalformedHash(t *testing.T) {
	p := NewPool(bcrypt.MinCost, 1)
	defer p.Close()

	ok, err := p.Compare(context.Background(), "password1", "not-a-hash")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPool_ConcurrentCallers(t *testing.T) {
	p := NewPool(bcrypt.MinCost, 4)
	defer p.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := p.Hash(context.Background(), "secret-pass")
			if err != nil {
				errs <- err
				return
			}
			if ok, err := p.Compare(context.Background(), "secret-pass", hash); err != nil || !ok {
				errs <- assert.AnError
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestPool_CancelledContext(t *testing.T) {
	p := NewPool(bcrypt.MinCost, 1)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Hash(ctx, "password1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPool_Closed(t *testing.T) {
	p := NewPool(bcrypt.MinCost, 1)
	p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := p.Hash(ctx, "password1")
	assert.ErrorIs(t, err, ErrClosed)
}
