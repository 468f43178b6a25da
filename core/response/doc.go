// Package response provides constructors for core responses: plain text,
// HTML, JSON, raw bytes, chunked streams, newline-delimited JSON,
// Server-Sent Events, redirects and empty responses.
//
// Every constructor returns a *message.Response ready to be returned from a
// handler. Buffered constructors set Content-Length; streaming constructors
// leave it unset so the adapter can use chunked transfer.
//
//	func hello(ctx *handler.Context) (*message.Response, error) {
//		return response.Text(http.StatusOK, "hello "+ctx.Param("name")), nil
//	}
//
// Decorators such as WithHeader and WithCookie modify a response in place
// and return it for chaining.
package response
