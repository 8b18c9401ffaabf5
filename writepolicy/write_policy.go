package writepolicy

import "context"

/*
This file defines what a "write policy" is: how a record written to the
memory tier reaches the persistent tier.

- Write-through: persist before the write returns
- Write-back: queue the write and persist it in the background

Persistence is best-effort. No policy ever reports a failure to its
caller; failures are logged where they happen.
*/

/*
WritePolicy is the contract that all write policies must follow.
The two-tier cache does not care which policy is used. It simply calls these methods.
*/
type WritePolicy interface {

	// OnWrite is called whenever an encoded record must be persisted.
	OnWrite(ctx context.Context, key string, value []byte)

	// OnDelete is called whenever a persisted key must be removed.
	// The key is gone from the store when OnDelete returns, so a read that
	// follows never sees the deleted record.
	OnDelete(ctx context.Context, key string)

	// Sync blocks until every write issued before it has reached the store.
	Sync()

	// Close is called when the cache is shutting down.
	Close()
}
