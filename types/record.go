package types

import (
	"time"

	"github.com/tidwall/gjson"
)

// Kind names the entity family a record belongs to.
type Kind string

const (
	KindCharacter Kind = "character"
	KindGuild     Kind = "guild"
)

// Prefix is the namespace every persisted key of this kind starts with.
// Two kinds never share a prefix, so they can live in the same store.
func (k Kind) Prefix() string {
	return "msea:" + string(k) + ":"
}

/*
Record is one cached entity snapshot.

A record is always replaced as a whole. Sub-resources are never patched
in place; a new aggregation produces a new record.

CacheExpiry is the only thing the cache looks at to decide staleness.
A zero CacheExpiry means "already expired", so a hand-built or damaged
record is re-fetched instead of being trusted forever.
*/
type Record struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Resources holds the named sub-documents (basic, stat, ...).
	// Each one is independently nullable.
	Resources map[string]Document `json:"resources"`

	// DerivedLinks holds identifiers resolved through a secondary lookup
	// chain (guild only). A nil value means the lookup was skipped or failed.
	DerivedLinks map[string]*string `json:"derivedLinks,omitempty"`

	LastUpdated time.Time `json:"lastUpdated"`
	CacheExpiry time.Time `json:"cacheExpiry,omitzero"`
}

// NewRecord returns an empty record ready to receive sub-resources.
func NewRecord(kind Kind, id string) *Record {
	return &Record{
		ID:        id,
		Kind:      kind,
		Resources: make(map[string]Document),
	}
}

// Resource returns the named sub-document, or nil when it is absent.
func (r *Record) Resource(name string) Document {
	if r == nil {
		return nil
	}
	return r.Resources[name]
}

// Link returns a derived link and whether it was resolved.
func (r *Record) Link(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	v := r.DerivedLinks[name]
	if v == nil {
		return "", false
	}
	return *v, true
}

// SetLink stores a derived link; an empty value is stored as null.
func (r *Record) SetLink(name, value string) {
	if r.DerivedLinks == nil {
		r.DerivedLinks = make(map[string]*string)
	}
	if value == "" {
		r.DerivedLinks[name] = nil
		return
	}
	r.DerivedLinks[name] = &value
}

/*
Document is one opaque JSON sub-resource as returned by the remote API.

The cache does not type individual fields. The presentation layer owns the
shapes; the accessors below are enough for the few fields the cache itself
needs (guild master name, character image, ocid).
*/
type Document []byte

// MarshalJSON emits the raw document, or null when empty.
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON keeps a copy of the raw bytes.
func (d *Document) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = nil
		return nil
	}
	*d = append((*d)[:0], b...)
	return nil
}

// IsNull reports whether the document is absent or a JSON null.
func (d Document) IsNull() bool {
	return len(d) == 0 || gjson.ParseBytes(d).Type == gjson.Null
}

// Valid reports whether the document is well-formed JSON.
func (d Document) Valid() bool {
	return len(d) > 0 && gjson.ValidBytes(d)
}

// Get looks up a gjson path inside the document.
func (d Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d, path)
}

// String returns the string at path, or "" when missing.
func (d Document) String(path string) string {
	return d.Get(path).String()
}
