package app

import "github.com/dmitrymomot/edgezero/core/router"

// Hooks describes an application to Build.
type Hooks interface {
	Routes() *router.Service
}

// Namer is implemented by hooks that name their app.
type Namer interface {
	Name() string
}

// Configurer is implemented by hooks that adjust the app after creation.
type Configurer interface {
	Configure(a *App)
}

// Build creates the app from hooks: routes first, then the name, then
// Configure if implemented.
func Build(h Hooks, opts ...Option) *App {
	a := New(h.Routes(), opts...)
	if n, ok := h.(Namer); ok {
		a.SetName(n.Name())
	}
	if c, ok := h.(Configurer); ok {
		c.Configure(a)
	}
	return a
}
