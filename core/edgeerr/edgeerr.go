package edgeerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/message"
)

// Kind tags an Error.
type Kind uint8

const (
	KindBadRequest Kind = iota + 1
	KindValidation
	KindNotFound
	KindMethodNotAllowed
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Status returns the default HTTP status for the kind.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error is a dispatch failure.
type Error struct {
	kind    Kind
	message string
	path    string
	method  string
	allowed []string
	cause   error
}

// BadRequest returns a 400 error with msg.
func BadRequest(msg string) *Error {
	return &Error{kind: KindBadRequest, message: msg}
}

// BadRequestf returns a 400 error with a formatted message.
func BadRequestf(format string, args ...any) *Error {
	return BadRequest(fmt.Sprintf(format, args...))
}

// Validation returns a 422 error with msg.
func Validation(msg string) *Error {
	return &Error{kind: KindValidation, message: msg}
}

// NotFound returns a 404 error for path.
func NotFound(path string) *Error {
	return &Error{kind: KindNotFound, path: path}
}

// Missing returns a 404 error for a non-route resource, described by msg.
func Missing(msg string) *Error {
	return &Error{kind: KindNotFound, message: msg}
}

// MethodNotAllowed returns a 405 error. allowed is sorted and de-duplicated.
func MethodNotAllowed(method string, allowed []string) *Error {
	set := slices.Clone(allowed)
	slices.Sort(set)
	set = slices.Compact(set)
	return &Error{kind: KindMethodNotAllowed, method: method, allowed: set}
}

// Internal returns a 500 error wrapping cause.
func Internal(cause error) *Error {
	if cause == nil {
		cause = errors.New("unknown error")
	}
	return &Error{kind: KindInternal, cause: cause}
}

// Internalf returns a 500 error with a formatted cause.
func Internalf(format string, args ...any) *Error {
	return Internal(fmt.Errorf(format, args...))
}

// From converts err to an *Error. A nil err yields nil.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e
	}
	return Internal(err)
}

// Kind returns the error kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// Status returns the HTTP status code.
func (e *Error) Status() int {
	return e.kind.Status()
}

// StatusCode is an alias of Status.
func (e *Error) StatusCode() int {
	return e.Status()
}

// Message returns the client-facing message.
func (e *Error) Message() string {
	switch e.kind {
	case KindNotFound:
		if e.message != "" {
			return e.message
		}
		return "no route matched path: " + e.path
	case KindMethodNotAllowed:
		allowed := "(none)"
		if len(e.allowed) > 0 {
			allowed = strings.Join(e.allowed, ", ")
		}
		return fmt.Sprintf("method %s not allowed; allowed: %s", e.method, allowed)
	case KindInternal:
		return "internal error: " + e.cause.Error()
	default:
		return e.message
	}
}

func (e *Error) Error() string {
	return e.Message()
}

// Unwrap returns the Internal cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Allowed returns the allowed methods of a MethodNotAllowed error.
func (e *Error) Allowed() []string {
	return slices.Clone(e.allowed)
}

// Path returns the unmatched path of a NotFound error.
func (e *Error) Path() string {
	return e.path
}

type envelope struct {
	Error envelopeBody `json:"error"`
}

type envelopeBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Response renders the error as a JSON envelope response.
func (e *Error) Response() *message.Response {
	data, err := json.Marshal(envelope{Error: envelopeBody{Status: e.Status(), Message: e.Message()}})
	if err != nil {
		data = []byte(`{"error":{"status":500,"message":"internal error"}}`)
	}
	resp := message.NewResponse(e.Status(), body.FromBytes(data))
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Content-Length", strconv.Itoa(len(data)))
	if e.kind == KindMethodNotAllowed && len(e.allowed) > 0 {
		resp.Header.Set("Allow", strings.Join(e.allowed, ", "))
	}
	return resp
}
