package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int64
	Name string
}

func TestUseCacheCallsBackOnceThenServesFromCache(t *testing.T) {
	c, err := NewCacheRedis(nil, true)
	require.NoError(t, err)

	ctx := context.Background()
	calls := 0
	load := func() (*item, error) {
		calls++
		return &item{ID: 1, Name: "Acme"}, nil
	}

	v, err := UseCache(ctx, c, "item:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "Acme", v.Name)

	v, err = UseCache(ctx, c, "item:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "Acme", v.Name)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(ctx, "item:1"))
	_, err = UseCache(ctx, c, "item:1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUseCacheDoesNotCacheErrors(t *testing.T) {
	c, err := NewCacheRedis(nil, true)
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	load := func() (*item, error) {
		calls++
		return nil, boom
	}

	for i := 0; i < 2; i++ {
		_, err = UseCache(context.Background(), c, "item:2", time.Minute, load)
		assert.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, calls)
}

func TestNewCacheRedisNeedsABackend(t *testing.T) {
	_, err := NewCacheRedis(nil, false)
	assert.Error(t, err)
}
