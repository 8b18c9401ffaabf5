// Package fetcher assembles complete entity records from the remote API.
//
// A character is a flat fan-out of independent calls; a guild is a short
// dependency chain where only the first step is required.
package fetcher

import (
	"context"
	"maps"

	"go.opentelemetry.io/otel"

	"github.com/krisalay/msea-cache/types"
)

const tracerName = "github.com/krisalay/msea-cache/fetcher"

var tracer = otel.Tracer(tracerName)

// Source is the remote data source: one GET per logical endpoint.
type Source interface {
	Get(ctx context.Context, path string, params map[string]string) (types.Document, error)
}

// Stamper sets LastUpdated and CacheExpiry on a freshly assembled record.
type Stamper interface {
	Stamp(rec *types.Record)
}

// Error is returned when a required sub-resource could not be fetched.
// The message names only the kind; Unwrap exposes the cause.
type Error struct {
	Kind types.Kind
	ID   string
	Err  error
}

func (e *Error) Error() string {
	return "failed to fetch " + string(e.Kind) + " data"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Endpoint maps one record sub-resource to the API path that serves it.
type Endpoint struct {
	Resource string
	Path     string
	// Params are sent in addition to the id parameter.
	Params map[string]string
}

func (ep Endpoint) params(idParam, id string) map[string]string {
	p := make(map[string]string, len(ep.Params)+1)
	maps.Copy(p, ep.Params)
	p[idParam] = id
	return p
}
