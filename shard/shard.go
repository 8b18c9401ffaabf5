package shard

import "sync"

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the memory tier.
Instead of having: One big map and one big lock
We split the records across shards. Each shard:
- Holds some portion of the records
- Has its own lock for writes

There is no eviction: a record lives until it is invalidated or replaced.
*/
type Shard struct {

	// Records holds this shard's id → record table. Lookups never lock.
	Records RecordTable

	// WriteMu serializes writers on this shard.
	// - Reads are lock-free
	// - Writes are protected by this mutex
	WriteMu sync.Mutex
}

func NewShard() *Shard {
	return &Shard{
		Records: NewSnapshotTable(),
	}
}
