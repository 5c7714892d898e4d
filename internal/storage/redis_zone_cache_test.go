package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/storage"
)

// Runs against a real server; set REDIS_URL (e.g. redis://localhost:6379/15).
func newTestRedisCache(t *testing.T) *storage.RedisZoneCache {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	cache, err := storage.NewRedisZoneCache(url,
		storage.WithZoneCachePrefix("sitebuilder-test:"+uuid.NewString()+":"),
		storage.WithZoneCacheTTL(time.Minute),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cache.Clear(context.Background())
		cache.Close()
	})
	return cache
}

func TestRedisZoneCache_RoundTrip(t *testing.T) {
	cache := newTestRedisCache(t).ForSession("page-1")

	_, ok := cache.Load("card-1:body")
	assert.False(t, ok)

	nodes := []domain.Node{{Type: "Text", Props: domain.Props{"id": "t-1", "text": "hi"}}}
	require.NoError(t, cache.Store("card-1:body", nodes))

	got, ok := cache.Load("card-1:body")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "t-1", got[0].ID())
	assert.Equal(t, "hi", got[0].Props["text"])

	require.NoError(t, cache.Store("card-1:empty", []domain.Node{}))
	got, ok = cache.Load("card-1:empty")
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestRedisZoneCache_SessionsAreIsolated(t *testing.T) {
	base := newTestRedisCache(t)
	a, b := base.ForSession("a"), base.ForSession("b")

	require.NoError(t, a.Store("grid-1:cells", []domain.Node{{Type: "Text", Props: domain.Props{"id": "x"}}}))

	_, ok := b.Load("grid-1:cells")
	assert.False(t, ok)

	require.NoError(t, a.Clear(context.Background()))
	_, ok = a.Load("grid-1:cells")
	assert.False(t, ok)
}

func TestRedisZoneCache_StoreReportsFailure(t *testing.T) {
	cache := newTestRedisCache(t)
	require.NoError(t, cache.Close())

	err := cache.Store("card-1:body", []domain.Node{{Type: "Text", Props: domain.Props{"id": "t-1"}}})
	assert.Error(t, err)
}

func TestNewRedisZoneCache_BadURL(t *testing.T) {
	_, err := storage.NewRedisZoneCache("not a url")
	assert.Error(t, err)
}
