package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglinehq/ragline/pkg/protocol"
)

type countingService struct {
	inner protocol.RetrievalService
	err   error
	calls int
}

func (s *countingService) Search(ctx context.Context, query string, maxResults int) ([]protocol.Document, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}

	return s.inner.Search(ctx, query, maxResults)
}

func setupCache(t *testing.T, inner protocol.RetrievalService, ttl time.Duration) (*miniredis.Miniredis, *CachedService) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, NewCachedService(inner, rdb, ttl)
}

func TestCachedService_SecondLookupServedFromCache(t *testing.T) {
	backend := &countingService{inner: NewStaticService()}
	_, cache := setupCache(t, backend, time.Minute)

	first, err := cache.Search(context.Background(), "what is rag?", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := cache.Search(context.Background(), "what is rag?", 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.calls)
}

func TestCachedService_DistinctLimitsAreDistinctEntries(t *testing.T) {
	backend := &countingService{inner: NewStaticService()}
	_, cache := setupCache(t, backend, time.Minute)

	_, err := cache.Search(context.Background(), "what is rag?", 1)
	require.NoError(t, err)

	results, err := cache.Search(context.Background(), "what is rag?", 3)
	require.NoError(t, err)

	assert.Len(t, results, 3)
	assert.Equal(t, 2, backend.calls)
}

func TestCachedService_ExpiredEntryRefetches(t *testing.T) {
	backend := &countingService{inner: NewStaticService()}
	mr, cache := setupCache(t, backend, time.Second)

	_, err := cache.Search(context.Background(), "pipeline basics", 2)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = cache.Search(context.Background(), "pipeline basics", 2)
	require.NoError(t, err)

	assert.Equal(t, 2, backend.calls)
}

func TestCachedService_CorruptEntryFallsThrough(t *testing.T) {
	backend := &countingService{inner: NewStaticService()}
	mr, cache := setupCache(t, backend, time.Minute)

	_, err := cache.Search(context.Background(), "pipeline basics", 2)
	require.NoError(t, err)
	require.Len(t, mr.Keys(), 1)

	require.NoError(t, mr.Set(mr.Keys()[0], "not json"))

	results, err := cache.Search(context.Background(), "pipeline basics", 2)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, 2, backend.calls)
}

func TestCachedService_BackendErrorsAreNeverCached(t *testing.T) {
	backend := &countingService{err: errors.New("search backend unavailable")}
	mr, cache := setupCache(t, backend, time.Minute)

	_, err := cache.Search(context.Background(), "what is rag?", 2)
	require.Error(t, err)

	assert.Empty(t, mr.Keys())

	backend.err = nil
	backend.inner = NewStaticService()

	results, err := cache.Search(context.Background(), "what is rag?", 2)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, 2, backend.calls)
}

func TestCachedService_RedisOutageDegradesToBackend(t *testing.T) {
	backend := &countingService{inner: NewStaticService()}
	mr, cache := setupCache(t, backend, time.Minute)

	mr.Close()

	results, err := cache.Search(context.Background(), "what is rag?", 2)
	require.NoError(t, err)

	assert.Len(t, results, 2)
	assert.Equal(t, 1, backend.calls)
}
