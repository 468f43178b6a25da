// Package app bundles a router service with its name, logger and the kv
// and proxy collaborators into the value adapters serve.
//
//	type demo struct{}
//
//	func (demo) Routes() *router.Service {
//		return router.NewBuilder().Get("/", hello).Build()
//	}
//
//	func (demo) Name() string { return "demo" }
//
//	a := app.Build(demo{}, app.WithKV(kv.NewHandle(kv.NewMemoryStore())))
package app
