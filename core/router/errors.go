package router

import "errors"

var (
	// Builder errors
	ErrInvalidPattern     = errors.New("invalid route path pattern")
	ErrInvalidMethod      = errors.New("invalid http method")
	ErrDuplicateRoute     = errors.New("duplicate route definition")
	ErrNilHandler         = errors.New("nil route handler")
	ErrBuilderFrozen      = errors.New("router already built")
	ErrInvalidListingPath = errors.New("route listing path must start with '/'")

	// Tree errors
	ErrInvalidRegexp    = errors.New("invalid route path pattern regexp")
	ErrMissingChild     = errors.New("missing child node")
	ErrWildcardPosition = errors.New("wildcard position must be last")
	ErrParamDelimiter   = errors.New("param delimiter must be unique")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
)
