// Package app wires the cache service from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	cache "github.com/krisalay/msea-cache"
	"github.com/krisalay/msea-cache/config"
	"github.com/krisalay/msea-cache/engine"
	"github.com/krisalay/msea-cache/expiration"
	"github.com/krisalay/msea-cache/fetcher"
	"github.com/krisalay/msea-cache/httpapi"
	"github.com/krisalay/msea-cache/nexon"
	"github.com/krisalay/msea-cache/service"
	"github.com/krisalay/msea-cache/storage"
	"github.com/krisalay/msea-cache/storage/memstore"
	"github.com/krisalay/msea-cache/storage/noop"
	redisstore "github.com/krisalay/msea-cache/storage/redis"
	"github.com/krisalay/msea-cache/storage/sqlite"
	"github.com/krisalay/msea-cache/types"
	"github.com/krisalay/msea-cache/writepolicy"
)

// App owns every long-lived component. Close releases them in reverse order.
type App struct {
	Store      storage.Store
	Client     *nexon.Client
	Counters   *types.Counters
	Characters *service.EntityService
	Guilds     *service.EntityService
	Lookup     *service.Lookup

	closeStore func() error
	logger     *zap.Logger
}

// OpenStore opens the persistent tier selected by cfg.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreNone:
		return noop.Store{}, func() error { return nil }, nil
	case config.StoreMemory:
		return memstore.New(), func() error { return nil }, nil
	case config.StoreRedis:
		st := redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			UseTLS:   cfg.RedisTLS,
		})
		if err := st.Ping(ctx); err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return st, st.Close, nil
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// New builds the app from cfg.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, closeStore, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	client := nexon.NewClient(cfg.APIBaseURL, cfg.APIKey, httpClient)

	counters := &types.Counters{}
	eng := engine.NewCacheEngine(expiration.NewFixedTTL(), clockwork.NewRealClock(), counters)

	newPolicy := func() writepolicy.WritePolicy {
		if cfg.WritePolicy == config.WriteBack {
			return writepolicy.NewWriteBackPolicy(store, cfg.WriteBackBuffer, logger)
		}
		return writepolicy.NewWriteThroughPolicy(store, logger)
	}

	var charOpts []fetcher.CharacterOption
	if cfg.CharacterExtras {
		charOpts = append(charOpts, fetcher.WithOptionalResources(fetcher.ExtraCharacterEndpoints...))
	}

	characters := service.New(
		cache.NewTieredCache(types.KindCharacter, cache.NewShardedMemory(cfg.MemoryShards), store, newPolicy(), logger),
		fetcher.NewCharacterFetcher(client, eng, logger, charOpts...),
		eng,
		service.WithLogger(logger),
		service.WithCoalescing(cfg.CoalesceFetches),
	)
	guilds := service.New(
		cache.NewTieredCache(types.KindGuild, cache.NewShardedMemory(cfg.MemoryShards), store, newPolicy(), logger),
		fetcher.NewGuildFetcher(client, eng, logger),
		eng,
		service.WithLogger(logger),
		service.WithCoalescing(cfg.CoalesceFetches),
	)

	return &App{
		Store:      store,
		Client:     client,
		Counters:   counters,
		Characters: characters,
		Guilds:     guilds,
		Lookup:     service.NewLookup(client),
		closeStore: closeStore,
		logger:     logger,
	}, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	stats := func() any {
		return map[string]any{
			"counters":          a.Counters.Snapshot(),
			"memory_characters": a.Characters.MemoryLen(),
			"memory_guilds":     a.Guilds.MemoryLen(),
		}
	}
	return httpapi.New(a.Characters, a.Guilds, a.Lookup, stats, a.logger).Routes()
}

// Close flushes pending writes and closes the store.
func (a *App) Close() error {
	a.Characters.Close()
	a.Guilds.Close()
	return a.closeStore()
}
