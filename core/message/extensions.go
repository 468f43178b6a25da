package message

import (
	"net"
	"reflect"
)

// Extensions is a heterogeneous, type-keyed side channel carried by a
// request. It is owned by a single request and is not safe for concurrent
// mutation.
type Extensions struct {
	values map[reflect.Type]any
}

// Len returns the number of stored values.
func (e *Extensions) Len() int {
	return len(e.values)
}

// Clone returns a shallow copy.
func (e *Extensions) Clone() *Extensions {
	out := &Extensions{}
	if len(e.values) > 0 {
		out.values = make(map[reflect.Type]any, len(e.values))
		for k, v := range e.values {
			out.values[k] = v
		}
	}
	return out
}

// Insert stores v under its type, replacing any previous value of that type.
func Insert[T any](e *Extensions, v T) {
	if e.values == nil {
		e.values = make(map[reflect.Type]any)
	}
	e.values[reflect.TypeFor[T]()] = v
}

// Get returns the value stored for type T.
func Get[T any](e *Extensions) (T, bool) {
	v, ok := e.values[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Remove deletes and returns the value stored for type T.
func Remove[T any](e *Extensions) (T, bool) {
	v, ok := Get[T](e)
	if ok {
		delete(e.values, reflect.TypeFor[T]())
	}
	return v, ok
}

// RemoteAddr is the peer address recorded by adapters, in host:port form.
type RemoteAddr string

// Host returns the address without its port.
func (a RemoteAddr) Host() string {
	host, _, err := net.SplitHostPort(string(a))
	if err != nil {
		return string(a)
	}
	return host
}
