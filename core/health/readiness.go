package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/logger"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/response"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// Readiness answers "READY" when every check passes and 503 on the first
// failure. A nil log discards failures.
func Readiness(log *slog.Logger, checks ...Check) handler.HandlerFunc {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(ctx *handler.Context) (*message.Response, error) {
		for i, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					slog.Int("check", i),
					logger.Error(err),
				)
				return response.WithNoCache(response.Text(http.StatusServiceUnavailable, "NOT READY")), nil
			}
		}
		return response.WithNoCache(response.Text(http.StatusOK, "READY")), nil
	}
}
