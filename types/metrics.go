package types

import "sync/atomic"

// This file defines how the cache reports what it is doing.

/*
Metrics is an interface that defines what the cache wants to measure.
Each method represents an event in the lookup path. The service calls these methods whenever something happens.
*/
type Metrics interface {

	// Hit is called when a fresh record is served from the memory tier.
	Hit()

	// Promote is called when a fresh record is served from the persistent tier
	// and copied into the memory tier.
	Promote()

	// Miss is called when neither tier has a fresh record and the loader runs.
	Miss()

	// Expire is called when a tier held a record whose expiry has passed.
	Expire()

	// Refresh is called when a caller explicitly bypasses the cache.
	Refresh()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

Services always hold a non-nil Metrics, so the lookup path never needs
a nil check.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()     {}
func (NoopMetrics) Promote() {}
func (NoopMetrics) Miss()    {}
func (NoopMetrics) Expire()  {}
func (NoopMetrics) Refresh() {}

// Counters is a Metrics implementation backed by atomic counters.
// It is safe to share between services.
type Counters struct {
	hits     atomic.Int64
	promotes atomic.Int64
	misses   atomic.Int64
	expired  atomic.Int64
	refresh  atomic.Int64
}

func (c *Counters) Hit()     { c.hits.Add(1) }
func (c *Counters) Promote() { c.promotes.Add(1) }
func (c *Counters) Miss()    { c.misses.Add(1) }
func (c *Counters) Expire()  { c.expired.Add(1) }
func (c *Counters) Refresh() { c.refresh.Add(1) }

// CounterSnapshot is a point-in-time copy of Counters.
type CounterSnapshot struct {
	Hits      int64 `json:"hits"`
	Promotes  int64 `json:"promotes"`
	Misses    int64 `json:"misses"`
	Expired   int64 `json:"expired"`
	Refreshes int64 `json:"refreshes"`
}

// Snapshot reads every counter.
func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Hits:      c.hits.Load(),
		Promotes:  c.promotes.Load(),
		Misses:    c.misses.Load(),
		Expired:   c.expired.Load(),
		Refreshes: c.refresh.Load(),
	}
}
