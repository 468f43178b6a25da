package proxy

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/message"
)

// Request is an outbound request to an upstream.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Body   body.Body

	ext *message.Extensions
}

// NewRequest returns an empty-bodied request for an absolute target URL.
func NewRequest(method, target string) (*Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %s is not an absolute URL", ErrInvalidTarget, target)
	}
	if method == "" {
		method = http.MethodGet
	}
	return &Request{
		Method: method,
		URL:    u,
		Header: make(http.Header),
		Body:   body.Empty(),
	}, nil
}

// FromRequest retargets req at target, keeping its method, headers, body and
// extensions.
func FromRequest(req *message.Request, target *url.URL) *Request {
	header := make(http.Header, len(req.Header))
	maps.Copy(header, req.Header)
	return &Request{
		Method: req.Method,
		URL:    target,
		Header: header,
		Body:   req.Body,
		ext:    req.Extensions(),
	}
}

// Extensions returns the request's extension bag.
func (r *Request) Extensions() *message.Extensions {
	if r.ext == nil {
		r.ext = &message.Extensions{}
	}
	return r.ext
}

// Response is an upstream response.
type Response struct {
	Status int
	Header http.Header
	Body   body.Body
}

// NewResponse returns a response with status, b and no headers.
func NewResponse(status int, b body.Body) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: b}
}

// ToResponse converts r into a core response. The body is passed through,
// so a streaming upstream stays streaming.
func (r *Response) ToResponse() *message.Response {
	resp := message.NewResponse(r.Status, r.Body)
	maps.Copy(resp.Header, r.Header)
	return resp
}

// Client sends proxy requests.
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f ClientFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Handle is the proxy collaborator injected into requests.
type Handle struct {
	client Client
}

// NewHandle wraps client.
func NewHandle(client Client) *Handle {
	return &Handle{client: client}
}

// Client returns the underlying client.
func (h *Handle) Client() Client {
	return h.client
}

// Forward sends req and converts the upstream response. Failures are
// returned as edge errors.
func (h *Handle) Forward(ctx context.Context, req *Request) (*message.Response, error) {
	if h == nil || h.client == nil {
		return nil, edgeerr.Internal(ErrNoClient)
	}
	resp, err := h.client.Send(ctx, req)
	if err != nil {
		return nil, edgeerr.From(err)
	}
	if resp == nil {
		return nil, edgeerr.Internalf("%w: empty response", ErrUpstream)
	}
	return resp.ToResponse(), nil
}
