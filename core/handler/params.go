package handler

import (
	"maps"
	"slices"

	"github.com/dmitrymomot/edgezero/core/binder"
)

// PathParams holds the values captured by a route match. It is read-only.
type PathParams struct {
	values map[string]string
}

// NewPathParams copies values into a PathParams.
func NewPathParams(values map[string]string) PathParams {
	if len(values) == 0 {
		return PathParams{}
	}
	return PathParams{values: maps.Clone(values)}
}

// Get returns the value captured for key.
func (p PathParams) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of captured values.
func (p PathParams) Len() int {
	return len(p.values)
}

// Keys returns the sorted capture names.
func (p PathParams) Keys() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Map returns a copy of the captured values.
func (p PathParams) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	maps.Copy(out, p.values)
	return out
}

// Decode binds the captured values into v using `path` tags.
func (p PathParams) Decode(v any) error {
	return binder.Path(p.values, v)
}
