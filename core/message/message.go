package message

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/edgezero/core/body"
)

// ErrInvalidTarget indicates a request target that cannot be parsed.
var ErrInvalidTarget = errors.New("invalid request target")

// Request is the core request consumed by dispatch.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   body.Body

	ext *Extensions
	ctx context.Context
}

// NewRequest builds a request for method and target, which may be an
// absolute URL or an origin-form path with optional query.
func NewRequest(method, target string, b body.Body) (*Request, error) {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   b,
	}, nil
}

// Context returns the request context, defaulting to context.Background.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of r using ctx. Extensions are shared.
func (r *Request) WithContext(ctx context.Context) *Request {
	if ctx == nil {
		panic("nil context")
	}
	r2 := *r
	r2.ext = r.Extensions()
	r2.ctx = ctx
	return &r2
}

// Extensions returns the request's extension bag, creating it on first use.
func (r *Request) Extensions() *Extensions {
	if r.ext == nil {
		r.ext = &Extensions{}
	}
	return r.ext
}

// Path returns the escaped request path, "/" if empty.
func (r *Request) Path() string {
	if r.URL == nil {
		return "/"
	}
	if p := r.URL.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

// Response is the core response produced by dispatch.
type Response struct {
	Status int
	Header http.Header
	Body   body.Body
}

// NewResponse returns a response with status and b and an empty header set.
func NewResponse(status int, b body.Body) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
		Body:   b,
	}
}
