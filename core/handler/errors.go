package handler

import "errors"

var (
	// ErrNilResponse is the Internal cause reported when a handler returns
	// neither a response nor an error.
	ErrNilResponse = errors.New("handler returned nil response")

	// ErrNilHandler indicates a Next without a terminal handler.
	ErrNilHandler = errors.New("nil handler")
)

// Message used when form binding meets a streaming body.
const streamingFormMessage = "streaming bodies are not supported for form extraction"
