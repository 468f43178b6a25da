// Package handler defines the request context and the handler and
// middleware contracts executed by the router.
//
// A Handler turns a *Context into a *message.Response or an error. A
// Middleware receives the context and a Next continuation holding the
// remaining middleware and the terminal handler:
//
//	timing := handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (*message.Response, error) {
//		start := time.Now()
//		resp, err := next.Run(ctx)
//		if resp != nil {
//			resp.Header.Set("Server-Timing", fmt.Sprintf("app;dur=%d", time.Since(start).Milliseconds()))
//		}
//		return resp, err
//	})
//
// Not calling next.Run short-circuits the chain. Errors flow back unchanged
// unless a middleware replaces them.
//
// Context implements context.Context by delegating to the request context,
// so it can be passed to any blocking call.
package handler
