// Package logger builds slog loggers and provides attribute helpers for
// consistent keys across the router, middleware and adapters.
//
//	log := logger.New(
//		logger.WithProduction("edge-api"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "request handled",
//		logger.Method(req.Method),
//		logger.Path(req.Path()),
//		logger.StatusCode(resp.Status),
//		logger.Latency(time.Since(start)),
//	)
//
// Attribute helpers return an empty slog.Attr for nil or empty input.
package logger
