package expiration

import (
	"time"

	"github.com/krisalay/msea-cache/types"
)

// DefaultTTL is the validity window of every cached record.
const DefaultTTL = 30 * time.Minute

/*
FixedTTL implements "expire after write".
A record is valid for TTL after it was assembled. Reads never push the
expiry forward; only a new aggregation does.
*/
type FixedTTL struct {

	// TTL defines how long the record stays valid after it is stamped.
	TTL time.Duration
}

// NewFixedTTL returns the 30 minute strategy used in production.
func NewFixedTTL() *FixedTTL {
	return &FixedTTL{TTL: DefaultTTL}
}

/*
IsExpired checks whether the record is expired at this moment.

- A nil record or a zero CacheExpiry counts as expired.
- A record is expired only when now is strictly after CacheExpiry.
*/
func (f *FixedTTL) IsExpired(rec *types.Record, now time.Time) bool {
	if rec == nil || rec.CacheExpiry.IsZero() {
		return true
	}
	return now.After(rec.CacheExpiry)
}

// ExpiryFor returns now + TTL.
func (f *FixedTTL) ExpiryFor(now time.Time) time.Time {
	return now.Add(f.TTL)
}
