package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/krisalay/msea-cache/storage"
	"github.com/krisalay/msea-cache/storage/noop"
	"github.com/krisalay/msea-cache/types"
	"github.com/krisalay/msea-cache/writepolicy"
)

/*
TieredCache is the two-tier cache for one entity kind.
This struct connects:
- the memory tier (volatile, fast)
- the persistent tier (durable, possibly unavailable)
- the write policy that carries writes from one to the other
- the record codec

Persistence is best-effort. Every persistent-tier failure is logged here
and turned into "absent" or "nothing happened"; nothing above this type
ever sees a storage error.

TieredCache does NOT decide staleness. It returns what it holds and lets
the service ask the engine.
*/
type TieredCache struct {
	kind   types.Kind
	prefix string

	memory *ShardedMemory
	store  storage.Store
	policy writepolicy.WritePolicy

	logger *zap.Logger
}

// NewTieredCache creates a two-tier cache namespaced by kind.
// A nil store means "no persistent tier"; a nil policy means write-through.
func NewTieredCache(
	kind types.Kind,
	memory *ShardedMemory,
	store storage.Store,
	policy writepolicy.WritePolicy,
	logger *zap.Logger,
) *TieredCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("kind", string(kind)))
	if memory == nil {
		memory = NewShardedMemory(1)
	}
	if store == nil {
		store = noop.Store{}
	}
	if policy == nil {
		policy = writepolicy.NewWriteThroughPolicy(store, logger)
	}
	return &TieredCache{
		kind:   kind,
		prefix: kind.Prefix(),
		memory: memory,
		store:  store,
		policy: policy,
		logger: logger,
	}
}

// Kind returns the entity kind this cache is namespaced by.
func (c *TieredCache) Kind() types.Kind {
	return c.kind
}

// Key returns the persisted key for id.
func (c *TieredCache) Key(id string) string {
	return c.prefix + id
}

// GetMemory returns the memory-tier record for id.
func (c *TieredCache) GetMemory(id string) (*types.Record, bool) {
	return c.memory.Get(id)
}

// PutMemory stores rec in the memory tier, replacing any previous record.
func (c *TieredCache) PutMemory(id string, rec *types.Record) {
	c.memory.Put(id, rec)
}

/*
GetPersisted reads id from the persistent tier.

RETURNS absent (never an error) when:
- the key is missing
- the stored bytes are not a valid record
- the store fails or is unavailable
*/
func (c *TieredCache) GetPersisted(ctx context.Context, id string) (*types.Record, bool) {
	key := c.Key(id)
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.logger.Warn("read persisted cache entry", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		c.logger.Warn("decode persisted cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if rec.Kind == "" {
		rec.Kind = c.kind
	}
	return rec, true
}

// PutPersisted encodes rec and hands it to the write policy. Failures are logged.
func (c *TieredCache) PutPersisted(ctx context.Context, id string, rec *types.Record) {
	key := c.Key(id)
	raw, err := json.Marshal(rec)
	if err != nil {
		c.logger.Warn("encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	c.policy.OnWrite(ctx, key, raw)
}

// Put writes rec to both tiers.
func (c *TieredCache) Put(ctx context.Context, id string, rec *types.Record) {
	c.PutMemory(id, rec)
	c.PutPersisted(ctx, id, rec)
}

// Remove deletes id from both tiers. The persisted copy goes first so a
// concurrent read cannot promote it back into memory.
func (c *TieredCache) Remove(ctx context.Context, id string) {
	c.policy.OnDelete(ctx, c.Key(id))
	c.memory.Remove(id)
}

/*
RemoveAll deletes every persisted key under this cache's prefix and clears
the memory tier. Keys of other kinds sharing the store are untouched.

Pending writes are flushed first so a queued record cannot land after the
listing and survive the purge.
*/
func (c *TieredCache) RemoveAll(ctx context.Context) {
	c.memory.Clear()
	c.policy.Sync()

	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		c.logger.Warn("list persisted cache keys", zap.Error(err))
		return
	}
	for _, key := range keys {
		c.policy.OnDelete(ctx, key)
	}
}

// ListIDs returns the ids currently present in the persistent tier.
func (c *TieredCache) ListIDs(ctx context.Context) []string {
	keys, err := c.store.Keys(ctx, c.prefix)
	if err != nil {
		c.logger.Warn("list persisted cache keys", zap.Error(err))
		return nil
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if id, ok := strings.CutPrefix(key, c.prefix); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// MemoryLen returns the number of records held in memory.
func (c *TieredCache) MemoryLen() int {
	return c.memory.Len()
}

// Close flushes pending persistent writes.
func (c *TieredCache) Close() {
	c.policy.Close()
}

func decodeRecord(raw []byte) (*types.Record, error) {
	var rec types.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Resources == nil {
		rec.Resources = make(map[string]types.Document)
	}
	return &rec, nil
}
