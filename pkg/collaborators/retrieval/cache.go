package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raglinehq/ragline/pkg/protocol"
)

const defaultCacheTTL = 5 * time.Minute

// CachedService decorates a retrieval collaborator with a Redis result cache.
// Identical query+limit pairs are served from the cache within the TTL, which
// keeps repeated studio test runs cheap and deterministic.
type CachedService struct {
	inner protocol.RetrievalService
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedService wraps inner with a Redis cache. A non-positive TTL falls
// back to the default.
func NewCachedService(inner protocol.RetrievalService, rdb *redis.Client, ttl time.Duration) *CachedService {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &CachedService{inner: inner, rdb: rdb, ttl: ttl}
}

// Search serves cached results when present, otherwise delegates to the
// wrapped service and caches its answer. Cache failures fall through to the
// wrapped service; retrieval errors are never cached.
func (s *CachedService) Search(ctx context.Context, query string, maxResults int) ([]protocol.Document, error) {
	key := cacheKey(query, maxResults)

	cached, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var documents []protocol.Document
		if err := json.Unmarshal(cached, &documents); err == nil {
			return documents, nil
		}
		// Corrupt entry, fall through and refresh it.
	} else if !errors.Is(err, redis.Nil) && ctx.Err() != nil {
		return nil, fmt.Errorf("retrieval cache lookup cancelled: %w", ctx.Err())
	}

	documents, err := s.inner.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(documents)
	if err == nil {
		_ = s.rdb.Set(ctx, key, payload, s.ttl).Err()
	}

	return documents, nil
}

func cacheKey(query string, maxResults int) string {
	sum := sha256.Sum256([]byte(query))

	return "ragline:retrieval:" + hex.EncodeToString(sum[:]) + ":" + strconv.Itoa(maxResults)
}
