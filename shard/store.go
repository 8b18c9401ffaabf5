package shard

import (
	"maps"
	"sync/atomic"

	"github.com/krisalay/msea-cache/types"
)

// RecordTable is the id → record table a shard serves lookups from.
type RecordTable interface {
	Get(id string) (*types.Record, bool)

	// Put stores rec under id, replacing any earlier aggregation.
	Put(id string, rec *types.Record)

	Delete(id string)
	Clear()
	Len() int64
}

/*
snapshotTable keeps the whole table as one immutable map behind an atomic
pointer. A lookup reads whatever map is current. A refresh or invalidation
builds the next map from the current one and publishes it in a single store,
so a reader sees either the previous aggregation of a record or the new one,
never a half-applied table.

Writers must hold the owning Shard's WriteMu.
*/
type snapshotTable struct {
	current atomic.Pointer[map[string]*types.Record]
}

func NewSnapshotTable() *snapshotTable {
	t := &snapshotTable{}
	t.publish(map[string]*types.Record{})
	return t
}

func (t *snapshotTable) view() map[string]*types.Record {
	return *t.current.Load()
}

func (t *snapshotTable) publish(m map[string]*types.Record) {
	t.current.Store(&m)
}

// next publishes a modified clone of the current map.
func (t *snapshotTable) next(edit func(map[string]*types.Record)) {
	m := maps.Clone(t.view())
	if m == nil {
		m = map[string]*types.Record{}
	}
	edit(m)
	t.publish(m)
}

func (t *snapshotTable) Get(id string) (*types.Record, bool) {
	rec, ok := t.view()[id]
	return rec, ok
}

func (t *snapshotTable) Put(id string, rec *types.Record) {
	t.next(func(m map[string]*types.Record) { m[id] = rec })
}

// Delete is a no-op when id is absent, so no new map is published.
func (t *snapshotTable) Delete(id string) {
	if _, ok := t.view()[id]; !ok {
		return
	}
	t.next(func(m map[string]*types.Record) { delete(m, id) })
}

func (t *snapshotTable) Clear() {
	t.publish(map[string]*types.Record{})
}

func (t *snapshotTable) Len() int64 {
	return int64(len(t.view()))
}
