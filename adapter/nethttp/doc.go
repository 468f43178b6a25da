// Package nethttp runs edgezero dispatch behind net/http.
//
// ToCoreRequest converts an *http.Request into a core request. JSON and
// form bodies are buffered up to a limit; every other body is passed
// through as a stream. WriteResponse writes a core response back, flushing
// after each chunk of a streaming body.
//
//	a := app.New(router.NewBuilder().Get("/", hello).Build())
//	cfg := nethttp.DefaultConfig()
//	if err := nethttp.Serve(ctx, a, cfg, nethttp.WithLogger(log)); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Handler can also be mounted on any mux:
//
//	mux := http.NewServeMux()
//	mux.Handle("/", nethttp.NewHandler(a))
package nethttp
