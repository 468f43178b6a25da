package handler

import (
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/message"
)

// Handler produces the response for a matched request.
type Handler interface {
	Call(ctx *Context) (*message.Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx *Context) (*message.Response, error)

// Call calls f(ctx).
func (f HandlerFunc) Call(ctx *Context) (*message.Response, error) {
	return f(ctx)
}

// Middleware wraps the rest of the chain.
type Middleware interface {
	Handle(ctx *Context, next Next) (*message.Response, error)
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx *Context, next Next) (*message.Response, error)

// Handle calls f(ctx, next).
func (f MiddlewareFunc) Handle(ctx *Context, next Next) (*message.Response, error) {
	return f(ctx, next)
}

// Next is the continuation of a middleware chain: the middleware still to
// run and the terminal handler. It is an immutable value, so one chain can
// serve any number of concurrent requests.
type Next struct {
	middlewares []Middleware
	handler     Handler
}

// NewNext returns a continuation running middlewares in order, then h.
func NewNext(middlewares []Middleware, h Handler) Next {
	return Next{middlewares: middlewares, handler: h}
}

// Len returns the number of middleware left before the handler.
func (n Next) Len() int {
	return len(n.middlewares)
}

// Run invokes the head middleware with the tail continuation, or the handler
// once no middleware remains. A nil response with a nil error is reported
// as Internal(ErrNilResponse).
func (n Next) Run(ctx *Context) (*message.Response, error) {
	var (
		resp *message.Response
		err  error
	)
	switch {
	case len(n.middlewares) > 0:
		resp, err = n.middlewares[0].Handle(ctx, Next{middlewares: n.middlewares[1:], handler: n.handler})
	case n.handler != nil:
		resp, err = n.handler.Call(ctx)
	default:
		return nil, edgeerr.Internal(ErrNilHandler)
	}

	if resp == nil && err == nil {
		return nil, edgeerr.Internal(ErrNilResponse)
	}
	return resp, err
}

// Chain runs h behind middlewares for ctx.
func Chain(ctx *Context, h Handler, middlewares ...Middleware) (*message.Response, error) {
	return NewNext(middlewares, h).Run(ctx)
}
