// Package service exposes the per-kind entity services consumed by the
// presentation layer.
package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	cache "github.com/krisalay/msea-cache"
	"github.com/krisalay/msea-cache/api"
	"github.com/krisalay/msea-cache/engine"
	"github.com/krisalay/msea-cache/types"
)

// ErrMissingID is returned by Fetch and Refresh for a blank id.
var ErrMissingID = errors.New("id is required")

// EntityService is the read-through cache for one entity kind.
//
// Build one per kind at the application root and share it; the memory tier
// lives as long as the service does.
type EntityService struct {
	kind   types.Kind
	cache  *cache.TieredCache
	loader types.Loader
	engine *engine.CacheEngine
	logger *zap.Logger

	// coalesce routes concurrent misses for one id through sf.
	coalesce bool
	sf       singleflight.Group
}

var _ api.EntityService = (*EntityService)(nil)

// Option configures an EntityService.
type Option func(*EntityService)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *EntityService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCoalescing makes concurrent misses for the same id share one
// aggregation instead of each calling the loader.
func WithCoalescing(enabled bool) Option {
	return func(s *EntityService) {
		s.coalesce = enabled
	}
}

// New creates a service over a two-tier cache and a loader.
func New(c *cache.TieredCache, loader types.Loader, eng *engine.CacheEngine, opts ...Option) *EntityService {
	if eng == nil {
		eng = engine.NewCacheEngine(nil, nil, nil)
	}
	s := &EntityService{
		kind:   c.Kind(),
		cache:  c,
		loader: loader,
		engine: eng,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("kind", string(s.kind)))
	return s
}

// Kind returns the entity kind served.
func (s *EntityService) Kind() types.Kind {
	return s.kind
}

// Fetch returns a fresh record: memory, then persistent tier, then the loader.
func (s *EntityService) Fetch(ctx context.Context, id string) (*types.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	metrics := s.engine.Metrics

	if rec, ok := s.cache.GetMemory(id); ok {
		if !s.engine.IsExpired(rec) {
			metrics.Hit()
			return rec, nil
		}
		metrics.Expire()
	}

	if rec, ok := s.cache.GetPersisted(ctx, id); ok {
		if !s.engine.IsExpired(rec) {
			s.cache.PutMemory(id, rec)
			metrics.Promote()
			return rec, nil
		}
		metrics.Expire()
	}

	metrics.Miss()
	return s.aggregate(ctx, id)
}

// Refresh drops id from both tiers and fetches it again.
func (s *EntityService) Refresh(ctx context.Context, id string) (*types.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	s.engine.Metrics.Refresh()
	s.Invalidate(ctx, id)
	return s.Fetch(ctx, id)
}

// ReadPersisted returns the persistent-tier record for id, stale or not.
func (s *EntityService) ReadPersisted(ctx context.Context, id string) *types.Record {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	rec, ok := s.cache.GetPersisted(ctx, id)
	if !ok {
		return nil
	}
	return rec
}

// Invalidate removes id from both tiers.
func (s *EntityService) Invalidate(ctx context.Context, id string) {
	s.cache.Remove(ctx, id)
}

// InvalidateAll removes every record of this kind from both tiers.
func (s *EntityService) InvalidateAll(ctx context.Context) {
	s.cache.RemoveAll(ctx)
	s.logger.Info("cache cleared")
}

// ListCachedIDs returns the ids held by the persistent tier.
func (s *EntityService) ListCachedIDs(ctx context.Context) []string {
	return s.cache.ListIDs(ctx)
}

// Close flushes pending persistent writes.
func (s *EntityService) Close() {
	s.cache.Close()
}

// aggregate loads id and writes the record to both tiers. Nothing is written
// when the loader fails.
//
// With coalescing on, the shared load runs detached from any one caller's
// cancellation; each caller stops waiting when its own context ends.
func (s *EntityService) aggregate(ctx context.Context, id string) (*types.Record, error) {
	if !s.coalesce {
		return s.load(ctx, id)
	}

	ch := s.sf.DoChan(id, func() (any, error) {
		return s.load(context.WithoutCancel(ctx), id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.Record), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *EntityService) load(ctx context.Context, id string) (*types.Record, error) {
	rec, err := s.loader.Load(ctx, id)
	if err != nil {
		s.logger.Warn("aggregation failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.Put(ctx, id, rec)
	return rec, nil
}

// MemoryLen returns the number of records held in the memory tier.
func (s *EntityService) MemoryLen() int {
	return s.cache.MemoryLen()
}
