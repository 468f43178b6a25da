package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/edgezero/core/handler"
)

// DefaultRouteListingPath is where EnableRouteListing serves the route table.
const DefaultRouteListingPath = "/__edgezero/routes"

// route is an immutable handler binding.
type route struct {
	method    string
	pattern   string
	handler   handler.Handler
	paramKeys []string

	// group scoped middleware, run after router-wide middleware
	scoped []handler.Middleware
	// full chain, fixed at Build
	chain []handler.Middleware
}

// core is the state shared by a Builder and its groups.
type core struct {
	trees       map[string]*node
	routes      []*route
	middlewares []handler.Middleware
	listingPath string
	logger      *slog.Logger
	built       bool
}

// Builder accumulates routes and middleware. It is not safe for concurrent
// use and is single-use: Build freezes it.
type Builder struct {
	core   *core
	prefix string
	scoped []handler.Middleware
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	c := &core{
		trees:  make(map[string]*node),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &Builder{core: c}
}

// Route registers h for method and pattern. It panics on an invalid
// pattern or method and on a duplicate (method, pattern).
func (b *Builder) Route(method, pattern string, h handler.Handler) *Builder {
	b.mustOpen()
	if h == nil {
		panic(fmt.Errorf("%w: %s %s", ErrNilHandler, method, pattern))
	}
	if method == "" || strings.ContainsAny(method, " \t\r\n/") {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidMethod, method))
	}

	full := joinPattern(b.prefix, pattern)
	if full == "" || full[0] != '/' {
		panic(fmt.Errorf("%w: routing pattern must begin with '/' in '%s'", ErrInvalidPattern, full))
	}

	r := &route{
		method:    method,
		pattern:   full,
		handler:   h,
		paramKeys: paramKeys(full),
		scoped:    append([]handler.Middleware(nil), b.scoped...),
	}

	tree, ok := b.core.trees[method]
	if !ok {
		tree = &node{}
		b.core.trees[method] = tree
	}
	tree.insert(full, r)
	b.core.routes = append(b.core.routes, r)
	return b
}

// Handle is Route for a HandlerFunc.
func (b *Builder) Handle(method, pattern string, h handler.HandlerFunc) *Builder {
	if h == nil {
		return b.Route(method, pattern, nil)
	}
	return b.Route(method, pattern, h)
}

func (b *Builder) Get(pattern string, h handler.HandlerFunc) *Builder {
	return b.Handle(http.MethodGet, pattern, h)
}

func (b *Builder) Post(pattern string, h handler.HandlerFunc) *Builder {
	return b.Handle(http.MethodPost, pattern, h)
}

func (b *Builder) Put(pattern string, h handler.HandlerFunc) *Builder {
	return b.Handle(http.MethodPut, pattern, h)
}

func (b *Builder) Patch(pattern string, h handler.HandlerFunc) *Builder {
	return b.Handle(http.MethodPatch, pattern, h)
}

func (b *Builder) Delete(pattern string, h handler.HandlerFunc) *Builder {
	return b.Handle(http.MethodDelete, pattern, h)
}

func (b *Builder) Head(pattern string, h handler.HandlerFunc) *Builder {
	return b.Handle(http.MethodHead, pattern, h)
}

func (b *Builder) Options(pattern string, h handler.HandlerFunc) *Builder {
	return b.Handle(http.MethodOptions, pattern, h)
}

// Use appends middleware. On the root builder it applies to every route;
// inside a group it applies to routes registered afterwards in that group.
func (b *Builder) Use(middlewares ...handler.Middleware) *Builder {
	b.mustOpen()
	if b.prefix == "" && b.scoped == nil {
		b.core.middlewares = append(b.core.middlewares, middlewares...)
		return b
	}
	b.scoped = append(b.scoped, middlewares...)
	return b
}

// Group calls fn with a builder that prefixes patterns with prefix and
// scopes middleware added through it.
func (b *Builder) Group(prefix string, fn func(g *Builder)) *Builder {
	b.mustOpen()
	g := &Builder{
		core:   b.core,
		prefix: joinPattern(b.prefix, prefix),
		scoped: append([]handler.Middleware{}, b.scoped...),
	}
	fn(g)
	return b
}

// EnableRouteListing serves the route table at DefaultRouteListingPath.
func (b *Builder) EnableRouteListing() *Builder {
	return b.EnableRouteListingAt(DefaultRouteListingPath)
}

// EnableRouteListingAt serves the route table at path.
// It panics if path is empty or does not start with '/'.
func (b *Builder) EnableRouteListingAt(path string) *Builder {
	b.mustOpen()
	if !strings.HasPrefix(path, "/") {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidListingPath, path))
	}
	b.core.listingPath = path
	return b
}

// Build freezes the builder and returns the immutable Service.
func (b *Builder) Build() *Service {
	b.mustOpen()
	c := b.core

	if c.listingPath != "" {
		if !strings.HasPrefix(c.listingPath, "/") {
			panic(fmt.Errorf("%w: '%s'", ErrInvalidListingPath, c.listingPath))
		}
		lb := &Builder{core: c}
		lb.Route(http.MethodGet, c.listingPath, listingHandler{core: c})
	}

	for _, r := range c.routes {
		chain := make([]handler.Middleware, 0, len(c.middlewares)+len(r.scoped))
		chain = append(chain, c.middlewares...)
		r.chain = append(chain, r.scoped...)
	}
	c.built = true

	return &Service{
		trees:  c.trees,
		routes: c.routes,
		logger: c.logger,
	}
}

func (b *Builder) mustOpen() {
	if b.core.built {
		panic(ErrBuilderFrozen)
	}
}

func joinPattern(prefix, pattern string) string {
	if prefix == "" {
		return pattern
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if pattern == "" || pattern == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if pattern[0] != '/' {
		pattern = "/" + pattern
	}
	return prefix + pattern
}
