package kv

import (
	"errors"
	"strings"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
)

// NotFoundError carries the missing key for callers that treat absence as
// an error.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string { return "key not found: " + e.Key }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ToEdgeError maps a kv error onto the edge error taxonomy.
func ToEdgeError(err error) *edgeerr.Error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	switch {
	case errors.As(err, &nf):
		return edgeerr.Missing("kv key: " + nf.Key)
	case errors.Is(err, ErrNotFound):
		return edgeerr.Missing("kv key not found")
	case errors.Is(err, ErrValidation):
		return edgeerr.BadRequest("kv validation error: " + detail(err, ErrValidation))
	case errors.Is(err, ErrSerialization):
		return edgeerr.BadRequest("kv serialization error: " + detail(err, ErrSerialization))
	default:
		return edgeerr.Internal(err)
	}
}

// detail strips the sentinel prefix added by fmt.Errorf("%w: ...").
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
