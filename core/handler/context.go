package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/edgezero/core/binder"
	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/message"
)

// Context is the per-request context handed to middleware and handlers.
type Context struct {
	req    *message.Request
	params PathParams
}

var _ context.Context = (*Context)(nil)

// NewContext returns a context for req and the captured params.
func NewContext(req *message.Request, params PathParams) *Context {
	return &Context{req: req, params: params}
}

func (c *Context) Deadline() (time.Time, bool) { return c.req.Context().Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.req.Context().Done() }
func (c *Context) Err() error                  { return c.req.Context().Err() }
func (c *Context) Value(key any) any           { return c.req.Context().Value(key) }

// Request returns the request. Middleware may mutate its headers and body.
func (c *Context) Request() *message.Request {
	return c.req
}

// SetRequest replaces the request seen by the rest of the chain.
func (c *Context) SetRequest(req *message.Request) {
	c.req = req
}

// SetValue stores val under key in the request context.
func (c *Context) SetValue(key, val any) {
	c.req = c.req.WithContext(context.WithValue(c.req.Context(), key, val))
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.req.Method
}

// Header returns the request headers.
func (c *Context) Header() http.Header {
	return c.req.Header
}

// Body returns the request body.
func (c *Context) Body() body.Body {
	return c.req.Body
}

// Extensions returns the request extension bag.
func (c *Context) Extensions() *message.Extensions {
	return c.req.Extensions()
}

// PathParams returns the captured route parameters.
func (c *Context) PathParams() PathParams {
	return c.params
}

// Param returns a single captured parameter, empty if absent.
func (c *Context) Param(key string) string {
	v, _ := c.params.Get(key)
	return v
}

// Path binds the path parameters into v. Failures are BadRequest.
func (c *Context) Path(v any) error {
	if err := c.params.Decode(v); err != nil {
		return edgeerr.BadRequestf("invalid path parameters: %v", err)
	}
	return nil
}

// Query binds the query string into v. Failures are BadRequest.
func (c *Context) Query(v any) error {
	if c.req.URL == nil {
		return nil
	}
	values, err := parseQuery(c.req.URL.RawQuery)
	if err != nil {
		return edgeerr.BadRequestf("invalid query string: %v", err)
	}
	if err := binder.Query(values, v); err != nil {
		return edgeerr.BadRequestf("invalid query string: %v", err)
	}
	return nil
}

// JSON decodes the buffered body into v. Malformed input and streaming
// bodies are BadRequest.
func (c *Context) JSON(v any) error {
	if c.req.Body.IsStream() {
		return edgeerr.BadRequest("invalid JSON body: " + body.ErrStreamingBody.Error())
	}
	if err := binder.JSON(c.req.Body.Bytes(), v); err != nil {
		return edgeerr.BadRequestf("invalid JSON body: %v", err)
	}
	return nil
}

// Form decodes a buffered form body into v. A streaming body is rejected
// with BadRequest rather than buffered.
func (c *Context) Form(v any) error {
	if c.req.Body.IsStream() {
		return edgeerr.BadRequest(streamingFormMessage)
	}
	if err := binder.Form(c.req.Header.Get("Content-Type"), c.req.Body.Bytes(), v); err != nil {
		return edgeerr.BadRequestf("invalid form body: %v", err)
	}
	return nil
}

func parseQuery(raw string) (url.Values, error) {
	if raw == "" {
		return url.Values{}, nil
	}
	return url.ParseQuery(raw)
}
