package engine

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/krisalay/msea-cache/expiration"
	"github.com/krisalay/msea-cache/types"
)

/*
CacheEngine is the policy layer shared by both cache tiers.
It is responsible for the "rules" of the cache, NOT storage.

It decides:
- When a record is stale
- Which timestamps a freshly assembled record carries
- How lookups are reported to metrics

It does NOT:
- Store data
- Talk to the remote API
- Handle locking
*/
type CacheEngine struct {

	// Expiration controls when a record should be considered too old.
	// If this is nil, the fixed 30 minute strategy is used.
	Expiration expiration.Strategy

	// Clock is the source of "now". Tests swap in a fake clock so expiry can be
	// exercised without sleeping.
	Clock clockwork.Clock

	// Metrics is how we keep track of hits, promotions, misses and refreshes.
	Metrics types.Metrics
}

/*
NewCacheEngine creates a CacheEngine.
Every nil argument is replaced by its production default.
*/
func NewCacheEngine(
	exp expiration.Strategy,
	clock clockwork.Clock,
	metrics types.Metrics,
) *CacheEngine {
	if exp == nil {
		exp = expiration.NewFixedTTL()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &CacheEngine{
		Expiration: exp,
		Clock:      clock,
		Metrics:    metrics,
	}
}

// Now returns the engine clock's current time.
func (e *CacheEngine) Now() time.Time {
	return e.Clock.Now()
}

/*
IsExpired checks whether a record is stale.

BEHAVIOR:
---------
- Delegates the decision to the configured Expiration strategy
- Uses the engine clock
- A record without CacheExpiry is always expired
*/
func (e *CacheEngine) IsExpired(rec *types.Record) bool {
	return e.Expiration.IsExpired(rec, e.Clock.Now())
}

// StampExpiry returns the expiry for a record assembled at now.
func (e *CacheEngine) StampExpiry(now time.Time) time.Time {
	return e.Expiration.ExpiryFor(now)
}

/*
Stamp marks a record as freshly assembled.
LastUpdated and CacheExpiry are always set together.
*/
func (e *CacheEngine) Stamp(rec *types.Record) {
	now := e.Clock.Now()
	rec.LastUpdated = now
	rec.CacheExpiry = e.StampExpiry(now)
}
