package binder

import "errors"

var (
	// ErrUnsupportedMediaType indicates a content type the binder cannot decode.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrMissingContentType indicates the payload has no content type.
	ErrMissingContentType = errors.New("missing content type")

	// ErrFailedToParseJSON indicates malformed JSON or a schema mismatch.
	ErrFailedToParseJSON = errors.New("failed to parse JSON body")

	// ErrFailedToParseForm indicates malformed form data.
	ErrFailedToParseForm = errors.New("failed to parse form data")

	// ErrFailedToParseQuery indicates a query value could not be converted.
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")

	// ErrFailedToParsePath indicates a path parameter could not be converted.
	ErrFailedToParsePath = errors.New("failed to parse path parameters")

	// ErrInvalidTarget indicates the destination is not a non-nil pointer to
	// a struct or a string map.
	ErrInvalidTarget = errors.New("invalid bind target")
)
