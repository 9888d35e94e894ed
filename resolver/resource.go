package resolver

import "github.com/jopela/regions/vocabulary"

// Resource identifies a knowledge-graph entity by URI. Two resources are
// equal iff their URIs are equal; the type is comparable and safe as a map
// key.
type Resource struct {
	uri string
}

// NewResource builds a Resource, stripping surrounding whitespace, quotes
// and angle brackets.
func NewResource(uri string) Resource {
	return Resource{uri: vocabulary.TrimIRI(uri)}
}

// URI returns the resource URI.
func (r Resource) URI() string {
	return r.uri
}

// String implements fmt.Stringer.
func (r Resource) String() string {
	return r.uri
}

// IsZero reports whether r is the zero Resource.
func (r Resource) IsZero() bool {
	return r.uri == ""
}

// Equal reports URI equality.
func (r Resource) Equal(other Resource) bool {
	return r.uri == other.uri
}

// MarshalText implements encoding.TextMarshaler.
func (r Resource) MarshalText() ([]byte, error) {
	return []byte(r.uri), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resource) UnmarshalText(text []byte) error {
	*r = NewResource(string(text))
	return nil
}
