package service

import (
	"context"
	"errors"
	"strings"
)

// ErrMissingName is returned by Lookup for a blank name.
var ErrMissingName = errors.New("name is required")

// Resolver turns display names into API identifiers.
type Resolver interface {
	CharacterID(ctx context.Context, name string) (string, error)
	GuildID(ctx context.Context, name, world string) (string, error)
}

// Lookup resolves names to ids. Results are not cached: ids are stable and
// the caller immediately fetches the entity, which is.
type Lookup struct {
	resolver Resolver
}

// NewLookup wraps a resolver.
func NewLookup(resolver Resolver) *Lookup {
	return &Lookup{resolver: resolver}
}

// CharacterID returns the ocid for a character name.
func (l *Lookup) CharacterID(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMissingName
	}
	return l.resolver.CharacterID(ctx, name)
}

// GuildID returns the oguild_id for a guild name in a world.
func (l *Lookup) GuildID(ctx context.Context, name, world string) (string, error) {
	name = strings.TrimSpace(name)
	world = strings.TrimSpace(world)
	if name == "" || world == "" {
		return "", ErrMissingName
	}
	return l.resolver.GuildID(ctx, name, world)
}
