// Package router builds the immutable dispatch Service from route
// registrations and middleware.
//
//	svc := router.NewBuilder().
//		Use(middleware.RequestLogger(logger)).
//		Get("/items/{id}", getItem).
//		Post("/items", createItem).
//		EnableRouteListing().
//		Build()
//
//	resp := svc.Oneshot(req)
//
// Each HTTP method owns a radix tree. Patterns combine static text with
// single-segment captures `{id}`, regexp captures `{id:[0-9]+}` and a
// trailing `*` catch-all, captured under the key "*". Lookup runs on the
// escaped request path and captured values are percent-decoded.
//
// Static segments win over regexp captures, which win over plain captures,
// which win over catch-alls, regardless of registration order. Registering
// the same structural pattern twice for a method panics with
// ErrDuplicateRoute; invalid patterns, methods and listing paths also panic
// at build time.
//
// When a path matches under other methods only, Dispatch fails with
// MethodNotAllowed carrying the sorted allowed set; when it matches nothing
// it fails with NotFound. Neither invokes a handler.
package router
