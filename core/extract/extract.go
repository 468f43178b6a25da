package extract

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/kv"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/proxy"
	"github.com/dmitrymomot/edgezero/core/validator"
)

// DefaultHost is reported when a request carries no host information.
const DefaultHost = "localhost"

// Extractor derives a typed value from a request context.
type Extractor[T any] interface {
	Extract(ctx *handler.Context) (T, error)
}

// Func adapts a function to Extractor.
type Func[T any] func(ctx *handler.Context) (T, error)

// Extract calls f(ctx).
func (f Func[T]) Extract(ctx *handler.Context) (T, error) {
	return f(ctx)
}

// JSON decodes the buffered request body into T.
func JSON[T any]() Extractor[T] {
	return Func[T](func(ctx *handler.Context) (T, error) {
		var v T
		err := ctx.JSON(&v)
		return v, err
	})
}

// Query binds the query string into T.
func Query[T any]() Extractor[T] {
	return Func[T](func(ctx *handler.Context) (T, error) {
		var v T
		err := ctx.Query(&v)
		return v, err
	})
}

// Path binds the captured path parameters into T.
func Path[T any]() Extractor[T] {
	return Func[T](func(ctx *handler.Context) (T, error) {
		var v T
		err := ctx.Path(&v)
		return v, err
	})
}

// Form binds a buffered form body into T.
func Form[T any]() Extractor[T] {
	return Func[T](func(ctx *handler.Context) (T, error) {
		var v T
		err := ctx.Form(&v)
		return v, err
	})
}

// ValidatedJSON is JSON followed by `validate` tag checks.
func ValidatedJSON[T any]() Extractor[T] { return Validated(JSON[T]()) }

// ValidatedQuery is Query followed by `validate` tag checks.
func ValidatedQuery[T any]() Extractor[T] { return Validated(Query[T]()) }

// ValidatedPath is Path followed by `validate` tag checks.
func ValidatedPath[T any]() Extractor[T] { return Validated(Path[T]()) }

// ValidatedForm is Form followed by `validate` tag checks.
func ValidatedForm[T any]() Extractor[T] { return Validated(Form[T]()) }

// Validated runs inner, then validates the result. Rule failures and a nil
// pointer result (a JSON null) are Validation errors; T must be a struct or
// pointer to struct.
func Validated[T any](inner Extractor[T]) Extractor[T] {
	return Func[T](func(ctx *handler.Context) (T, error) {
		v, err := inner.Extract(ctx)
		if err != nil {
			return v, err
		}
		var target any = &v
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return v, edgeerr.Validation("request value is required")
			}
			target = v
		}
		if err := validator.ValidateStruct(target); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return v, edgeerr.Validation(verrs.Error())
			}
			return v, edgeerr.Internal(err)
		}
		return v, nil
	})
}

// Headers returns a copy of the request headers.
func Headers() Extractor[http.Header] {
	return Func[http.Header](func(ctx *handler.Context) (http.Header, error) {
		return ctx.Header().Clone(), nil
	})
}

// Host returns the Host header, falling back to the URL host and then
// DefaultHost.
func Host() Extractor[string] {
	return Func[string](func(ctx *handler.Context) (string, error) {
		return hostOf(ctx.Request()), nil
	})
}

// ForwardedHost prefers the first X-Forwarded-Host entry over Host.
func ForwardedHost() Extractor[string] {
	return Func[string](func(ctx *handler.Context) (string, error) {
		if fwd := ctx.Header().Get("X-Forwarded-Host"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first, nil
			}
		}
		return hostOf(ctx.Request()), nil
	})
}

// KV returns the kv handle injected by the adapter.
func KV() Extractor[*kv.Handle] {
	return Func[*kv.Handle](func(ctx *handler.Context) (*kv.Handle, error) {
		h, ok := message.Get[*kv.Handle](ctx.Extensions())
		if !ok || h == nil {
			return nil, edgeerr.Internal(kv.ErrNoStore)
		}
		return h, nil
	})
}

// Proxy returns the proxy handle injected by the adapter.
func Proxy() Extractor[*proxy.Handle] {
	return Func[*proxy.Handle](func(ctx *handler.Context) (*proxy.Handle, error) {
		h, ok := message.Get[*proxy.Handle](ctx.Extensions())
		if !ok || h == nil {
			return nil, edgeerr.Internal(proxy.ErrNoClient)
		}
		return h, nil
	})
}

func hostOf(req *message.Request) string {
	if h := req.Header.Get("Host"); h != "" {
		return h
	}
	if req.URL != nil && req.URL.Host != "" {
		return req.URL.Host
	}
	return DefaultHost
}
