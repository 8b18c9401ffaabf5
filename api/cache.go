package api

import (
	"context"

	"github.com/krisalay/msea-cache/types"
)

/*
EntityService defines the PUBLIC API the presentation layer consumes, one
instance per entity kind (character, guild).
Tiers, expiry, aggregation and persistence are hidden behind this interface.
*/
type EntityService interface {

	/*
		Fetch returns the record for id.

		BEHAVIOR:
		-------------------
		1. Memory tier holds a fresh record → return it
		2. Persistent tier holds a fresh record → copy it into memory, return it
		3. Otherwise → aggregate from the remote API, write both tiers, return it

		Expired records in either tier are treated as absent. Aggregation
		errors are returned unchanged and nothing is cached.
	*/
	Fetch(ctx context.Context, id string) (*types.Record, error)

	/*
		Refresh drops id from both tiers and fetches it again, so it always
		reaches the remote API regardless of TTL.
	*/
	Refresh(ctx context.Context, id string) (*types.Record, error)

	/*
		ReadPersisted returns whatever the persistent tier holds for id, stale or
		not, so a view can paint immediately while Fetch runs.
		Returns nil on any failure.
	*/
	ReadPersisted(ctx context.Context, id string) *types.Record

	// Invalidate removes id from both tiers. Idempotent.
	Invalidate(ctx context.Context, id string)

	// InvalidateAll removes every record of this kind from both tiers.
	InvalidateAll(ctx context.Context)

	// ListCachedIDs returns the ids present in the persistent tier.
	ListCachedIDs(ctx context.Context) []string
}
