package types

import "context"

// Loader is the contract between the cache and the remote data source.
type Loader interface {

	/*
		Load is called when neither cache tier has a fresh record.
		1. Service checks memory → missing or stale
		2. Service checks the persistent tier → missing or stale
		3. Service calls Load(id)
		4. Loader issues every sub-resource request and assembles one record
		5. Service writes the record to both tiers and returns it

		Load either returns a complete, stamped record or an error. It never
		returns a partial record.
	*/
	Load(ctx context.Context, id string) (*Record, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, id string) (*Record, error)

func (f LoaderFunc) Load(ctx context.Context, id string) (*Record, error) {
	return f(ctx, id)
}
