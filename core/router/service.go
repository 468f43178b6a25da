package router

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/logger"
	"github.com/dmitrymomot/edgezero/core/message"
)

// MatchKind is the outcome of a route lookup.
type MatchKind uint8

const (
	NotFound MatchKind = iota
	Found
	MethodNotAllowed
)

func (k MatchKind) String() string {
	switch k {
	case Found:
		return "found"
	case MethodNotAllowed:
		return "method_not_allowed"
	default:
		return "not_found"
	}
}

// Match is the result of resolving a method and path.
type Match struct {
	Kind    MatchKind
	Method  string
	Pattern string
	Params  handler.PathParams
	Allowed []string

	route *route
}

// Handler returns the matched handler, nil unless Kind is Found.
func (m Match) Handler() handler.Handler {
	if m.route == nil {
		return nil
	}
	return m.route.handler
}

// RouteInfo describes a registered route.
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Service is the immutable dispatcher produced by Builder.Build. It is safe
// for concurrent use without locking.
type Service struct {
	trees  map[string]*node
	routes []*route
	logger *slog.Logger
}

// Routes returns the route table in registration order.
func (s *Service) Routes() []RouteInfo {
	out := make([]RouteInfo, len(s.routes))
	for i, r := range s.routes {
		out[i] = RouteInfo{Method: r.method, Path: r.pattern}
	}
	return out
}

// Match resolves method and the escaped path. When the method has no match,
// every other method tree is scanned and the sorted set of matching methods
// is reported as MethodNotAllowed.
func (s *Service) Match(method, path string) Match {
	if path == "" {
		path = "/"
	}

	if tree, ok := s.trees[method]; ok {
		if r, values := tree.lookup(path); r != nil {
			params := make(map[string]string, len(r.paramKeys))
			for i, v := range unescape(values) {
				if i < len(r.paramKeys) {
					params[r.paramKeys[i]] = v
				}
			}
			return Match{
				Kind:    Found,
				Method:  method,
				Pattern: r.pattern,
				Params:  handler.NewPathParams(params),
				route:   r,
			}
		}
	}

	var allowed []string
	for m, tree := range s.trees {
		if m == method {
			continue
		}
		if r, _ := tree.lookup(path); r != nil {
			allowed = append(allowed, m)
		}
	}
	if len(allowed) > 0 {
		sort.Strings(allowed)
		return Match{Kind: MethodNotAllowed, Method: method, Allowed: slices.Compact(allowed)}
	}
	return Match{Kind: NotFound, Method: method}
}

// Dispatch routes req through the middleware chain to the matched handler.
// Failures are always returned as *edgeerr.Error; no handler runs for
// NotFound or MethodNotAllowed.
func (s *Service) Dispatch(req *message.Request) (*message.Response, error) {
	path := req.Path()
	m := s.Match(req.Method, path)

	switch m.Kind {
	case Found:
		message.Insert(req.Extensions(), RouteInfo{Method: m.Method, Path: m.Pattern})
		ctx := handler.NewContext(req, m.Params)
		resp, err := handler.NewNext(m.route.chain, m.route.handler).Run(ctx)
		if err != nil {
			return nil, edgeerr.From(err)
		}
		return resp, nil

	case MethodNotAllowed:
		s.logger.DebugContext(req.Context(), "method not allowed",
			logger.Method(req.Method),
			logger.Path(path),
			slog.Any("allowed", m.Allowed),
		)
		return nil, edgeerr.MethodNotAllowed(req.Method, m.Allowed)

	default:
		s.logger.DebugContext(req.Context(), "route not found",
			logger.Method(req.Method),
			logger.Path(path),
		)
		return nil, edgeerr.NotFound(path)
	}
}

// MatchedRoute returns the route that matched req, recorded by Dispatch
// before the middleware chain runs.
func MatchedRoute(req *message.Request) (RouteInfo, bool) {
	return message.Get[RouteInfo](req.Extensions())
}

// Oneshot dispatches req and renders any error, so it always yields
// exactly one response.
func (s *Service) Oneshot(req *message.Request) *message.Response {
	resp, err := s.Dispatch(req)
	if err != nil {
		return edgeerr.From(err).Response()
	}
	return resp
}
