package cache

import (
	"github.com/krisalay/msea-cache/shard"
	"github.com/krisalay/msea-cache/types"
)

/*
ShardedMemory is the volatile tier of the cache.
It holds records for the lifetime of the process and nothing else:
no expiry checks, no eviction, no persistence. Those rules live in the
engine and the two-tier cache above it.
*/
type ShardedMemory struct {
	// shards are the actual storage units. Each shard is an independent map.
	shards []*shard.Shard

	// selector decides which shard an id goes to.
	selector shard.Selector
}

// NewShardedMemory creates a memory tier split across n shards.
func NewShardedMemory(n int) *ShardedMemory {
	if n <= 0 {
		n = 1
	}
	s := make([]*shard.Shard, n)
	for i := range s {
		s[i] = shard.NewShard()
	}

	return &ShardedMemory{
		shards:   s,
		selector: shard.HashSelector{},
	}
}

// Get returns the record stored for id, fresh or not.
func (m *ShardedMemory) Get(id string) (*types.Record, bool) {
	sh := m.selector.Select(id, m.shards)
	return sh.Records.Get(id)
}

// Put stores a record, replacing any previous one.
func (m *ShardedMemory) Put(id string, rec *types.Record) {
	sh := m.selector.Select(id, m.shards)

	sh.WriteMu.Lock()
	defer sh.WriteMu.Unlock()

	sh.Records.Put(id, rec)
}

// Remove deletes an id. Removing a missing id is safe.
func (m *ShardedMemory) Remove(id string) {
	sh := m.selector.Select(id, m.shards)

	sh.WriteMu.Lock()
	defer sh.WriteMu.Unlock()

	sh.Records.Delete(id)
}

// Clear empties every shard.
func (m *ShardedMemory) Clear() {
	for _, sh := range m.shards {
		sh.WriteMu.Lock()
		sh.Records.Clear()
		sh.WriteMu.Unlock()
	}
}

// Len returns the number of records across all shards.
func (m *ShardedMemory) Len() int {
	var n int64
	for _, sh := range m.shards {
		n += sh.Records.Len()
	}
	return int(n)
}
