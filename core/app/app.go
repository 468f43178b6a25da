package app

import (
	"io"
	"log/slog"

	"github.com/dmitrymomot/edgezero/core/kv"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/proxy"
	"github.com/dmitrymomot/edgezero/core/router"
)

// DefaultName is used when no name is configured.
const DefaultName = "EdgeZero App"

// App is the composition root handed to adapters: a built router plus the
// collaborators injected into every request.
type App struct {
	router *router.Service
	name   string
	logger *slog.Logger
	kv     *kv.Handle
	proxy  *proxy.Handle
}

// Option configures an App.
type Option func(*App)

// WithName sets the application name.
func WithName(name string) Option {
	return func(a *App) {
		a.SetName(name)
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithKV injects h into every request dispatched through the app.
func WithKV(h *kv.Handle) Option {
	return func(a *App) {
		a.kv = h
	}
}

// WithProxy injects h into every request dispatched through the app.
func WithProxy(h *proxy.Handle) Option {
	return func(a *App) {
		a.proxy = h
	}
}

// New returns an app serving svc. It panics if svc is nil.
func New(svc *router.Service, opts ...Option) *App {
	if svc == nil {
		panic("app: nil router service")
	}
	a := &App{
		router: svc,
		name:   DefaultName,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the router service.
func (a *App) Router() *router.Service {
	return a.router
}

// Name returns the application name.
func (a *App) Name() string {
	return a.name
}

// SetName replaces the name. An empty name resets it to DefaultName.
func (a *App) SetName(name string) {
	if name == "" {
		name = DefaultName
	}
	a.name = name
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// KV returns the configured kv handle, nil if none.
func (a *App) KV() *kv.Handle {
	return a.kv
}

// SetKV replaces the kv handle.
func (a *App) SetKV(h *kv.Handle) {
	a.kv = h
}

// Proxy returns the configured proxy handle, nil if none.
func (a *App) Proxy() *proxy.Handle {
	return a.proxy
}

// SetProxy replaces the proxy handle.
func (a *App) SetProxy(h *proxy.Handle) {
	a.proxy = h
}

// Inject stores the app's collaborators in req's extensions unless the
// request already carries them.
func (a *App) Inject(req *message.Request) {
	ext := req.Extensions()
	if a.kv != nil {
		if _, ok := message.Get[*kv.Handle](ext); !ok {
			message.Insert(ext, a.kv)
		}
	}
	if a.proxy != nil {
		if _, ok := message.Get[*proxy.Handle](ext); !ok {
			message.Insert(ext, a.proxy)
		}
	}
}

// Dispatch injects collaborators and dispatches req.
func (a *App) Dispatch(req *message.Request) (*message.Response, error) {
	a.Inject(req)
	return a.router.Dispatch(req)
}

// Oneshot injects collaborators and returns the rendered response,
// including error responses.
func (a *App) Oneshot(req *message.Request) *message.Response {
	a.Inject(req)
	return a.router.Oneshot(req)
}
