package body

import "errors"

var (
	// ErrStreamingBody is returned (or panicked with) when a buffered-only
	// operation is used on a Stream body.
	ErrStreamingBody = errors.New("body is streaming")

	// ErrBodyTooLarge is returned by Collect when the body exceeds the limit.
	ErrBodyTooLarge = errors.New("body exceeds size limit")

	// ErrFailedToEncodeJSON indicates a value could not be serialized.
	ErrFailedToEncodeJSON = errors.New("failed to encode JSON body")

	// ErrFailedToDecodeJSON indicates the buffered bytes are not valid JSON
	// for the target value.
	ErrFailedToDecodeJSON = errors.New("failed to decode JSON body")
)
