package shard

import "hash/fnv"

/*
This file decides HOW an id is assigned to a shard.
If every id went to the same shard, its write lock would become a bottleneck.
*/

/*
Selector is the interface that decides which shard should handle a given id.
The memory tier does not care HOW this decision is made.
*/
type Selector interface {
	Select(string, []*Shard) *Shard
}

// HashSelector picks a shard by hashing the id modulo the shard count.
type HashSelector struct{}

// hash converts a string id into a number. FNV is a fast, non-cryptographic hash.
func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Select chooses the shard for a given id.
func (HashSelector) Select(id string, shards []*Shard) *Shard {
	idx := int(hash(id) % uint32(len(shards)))
	return shards[idx]
}
