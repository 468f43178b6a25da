package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/logger"
	"github.com/dmitrymomot/edgezero/core/message"
)

// PanicError is the cause carried by the Internal error Recover returns.
type PanicError interface {
	error
	// Value returns the recovered value.
	Value() any
	// Stack returns the stack captured at the panic point.
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }
func (e *panicError) Value() any    { return e.value }
func (e *panicError) Stack() []byte { return e.stack }

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	// Logger receives the panic record (default: slog.Default()).
	Logger *slog.Logger
	// DisableStackTrace omits the stack from the log record.
	DisableStackTrace bool
}

// Recover turns panics in the rest of the chain into Internal errors.
func Recover() handler.Middleware {
	return RecoverWithConfig(RecoverConfig{})
}

// RecoverWithConfig is Recover with custom logging.
func RecoverWithConfig(cfg RecoverConfig) handler.Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return handler.MiddlewareFunc(func(ctx *handler.Context, next handler.Next) (resp *message.Response, err error) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			pe := &panicError{value: p, stack: debug.Stack()}

			attrs := []slog.Attr{
				logger.Component("recover"),
				logger.Method(ctx.Method()),
				logger.Path(ctx.Request().Path()),
				logger.Error(pe),
			}
			if !cfg.DisableStackTrace {
				attrs = append(attrs, logger.StackTrace(pe.stack))
			}
			cfg.Logger.LogAttrs(ctx, slog.LevelError, "panic recovered", attrs...)

			resp, err = nil, edgeerr.Internal(pe)
		}()
		return next.Run(ctx)
	})
}
