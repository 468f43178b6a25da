// Package edgeerr implements the error taxonomy used by dispatch.
//
// Every failure that leaves the router is an *Error with one of five kinds.
// Status and message are pure functions of the kind and its payload, and
// Response renders the fixed JSON envelope:
//
//	{"error":{"status":400,"message":"missing name"}}
//
// Client errors (BadRequest, Validation, NotFound, MethodNotAllowed) are safe
// to surface verbatim. Internal wraps an opaque cause; its message is
// rendered as is and redaction is left to middleware.
//
// From normalises any error: an *Error anywhere in the chain is reused,
// everything else becomes Internal.
package edgeerr
