// Package health provides liveness and readiness handlers.
//
//	b.Get("/health/live", health.Liveness)
//	b.Get("/health/ready", health.Readiness(log, kv.RedisHealthcheck(client)))
//	b.Get("/ping", health.NoContent)
//
// Checks follow the func(context.Context) error signature and run in order;
// the first failure answers 503.
package health
