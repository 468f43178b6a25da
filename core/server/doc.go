// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Write timeouts default to zero so streamed bodies are not cut off; set
// SERVER_WRITE_TIMEOUT to bound them.
package server
