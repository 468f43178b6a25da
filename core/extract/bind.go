package extract

import (
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

// Handle1 adapts fn to a Handler, extracting its argument with a.
func Handle1[A any](a Extractor[A], fn func(ctx *handler.Context, a A) (*message.Response, error)) handler.Handler {
	return handler.HandlerFunc(func(ctx *handler.Context) (*message.Response, error) {
		av, err := a.Extract(ctx)
		if err != nil {
			return nil, err
		}
		return fn(ctx, av)
	})
}

// Handle2 extracts two arguments in order, stopping at the first failure.
func Handle2[A, B any](a Extractor[A], b Extractor[B], fn func(ctx *handler.Context, a A, b B) (*message.Response, error)) handler.Handler {
	return handler.HandlerFunc(func(ctx *handler.Context) (*message.Response, error) {
		av, err := a.Extract(ctx)
		if err != nil {
			return nil, err
		}
		bv, err := b.Extract(ctx)
		if err != nil {
			return nil, err
		}
		return fn(ctx, av, bv)
	})
}

// Handle3 extracts three arguments in order, stopping at the first failure.
func Handle3[A, B, C any](a Extractor[A], b Extractor[B], c Extractor[C], fn func(ctx *handler.Context, a A, b B, c C) (*message.Response, error)) handler.Handler {
	return handler.HandlerFunc(func(ctx *handler.Context) (*message.Response, error) {
		av, err := a.Extract(ctx)
		if err != nil {
			return nil, err
		}
		bv, err := b.Extract(ctx)
		if err != nil {
			return nil, err
		}
		cv, err := c.Extract(ctx)
		if err != nil {
			return nil, err
		}
		return fn(ctx, av, bv, cv)
	})
}
