// This file defines how cached records expire over time.

package expiration

import (
	"time"

	"github.com/krisalay/msea-cache/types"
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
expiration logic into the cache, we define a strategy so the rule can be swapped in tests.
Both methods are pure functions of their input.
*/
type Strategy interface {

	// IsExpired checks if the record is stale at the given instant.
	IsExpired(*types.Record, time.Time) bool

	// ExpiryFor returns the expiry to stamp on a record assembled at now.
	ExpiryFor(now time.Time) time.Time
}
