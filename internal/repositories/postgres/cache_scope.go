package postgres

import (
	"context"
	"sync"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
)

// cacheScope ties cache access to the repository's transaction state.
// Outside a transaction reads go through the cache and invalidations run at
// once. Inside one, reads hit the database and invalidations wait for commit.
type cacheScope struct {
	cm   *cache.CacheManager
	inTx bool

	mu      sync.Mutex
	pending []func(context.Context)
}

func newCacheScope(cm *cache.CacheManager) *cacheScope {
	return &cacheScope{cm: cm}
}

func newTxCacheScope(cm *cache.CacheManager) *cacheScope {
	return &cacheScope{cm: cm, inTx: true}
}

// readThrough reports whether reads may be served from the cache
func (s *cacheScope) readThrough() bool {
	return !s.inTx
}

// invalidate runs fn now, or after commit when inside a transaction
func (s *cacheScope) invalidate(ctx context.Context, fn func(context.Context, *cache.CacheManager)) {
	if !s.inTx {
		fn(ctx, s.cm)
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, func(ctx context.Context) { fn(ctx, s.cm) })
	s.mu.Unlock()
}

// flush runs the invalidations queued by a committed transaction
func (s *cacheScope) flush(ctx context.Context) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	for _, fn := range pending {
		fn(ctx)
	}
}
