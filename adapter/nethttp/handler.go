package nethttp

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/kv"
	"github.com/dmitrymomot/edgezero/core/logger"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/proxy"
)

// Dispatcher renders a core request into a response. *router.Service and
// *app.App both satisfy it.
type Dispatcher interface {
	Oneshot(req *message.Request) *message.Response
}

// Handler serves a Dispatcher over net/http.
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	maxBody    int64
	kv         *kv.Handle
	proxy      *proxy.Handle
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger for conversion and write failures.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMaxBufferedBody bounds buffered JSON and form bodies.
func WithMaxBufferedBody(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithKV inserts h into every request that does not carry a KV handle.
func WithKV(store *kv.Handle) Option {
	return func(h *Handler) { h.kv = store }
}

// WithProxy inserts p into every request that does not carry a proxy handle.
func WithProxy(p *proxy.Handle) Option {
	return func(h *Handler) { h.proxy = p }
}

// NewHandler returns an http.Handler dispatching to d. It panics if d is nil.
func NewHandler(d Dispatcher, opts ...Option) *Handler {
	if d == nil {
		panic(ErrNilDispatcher)
	}
	h := &Handler{
		dispatcher: d,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody:    DefaultMaxBufferedBody,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP converts r, dispatches it and writes the result.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := ToCoreRequest(r, h.maxBody)
	if err != nil {
		resp := h.conversionError(err)
		h.logger.WarnContext(ctx, "request conversion failed",
			logger.Component("nethttp"),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.StatusCode(resp.Status),
			logger.Error(err),
		)
		if werr := WriteResponse(ctx, w, resp); werr != nil {
			h.logger.DebugContext(ctx, "write failed", logger.Component("nethttp"), logger.Error(werr))
		}
		return
	}

	ext := req.Extensions()
	if h.kv != nil {
		if _, ok := message.Get[*kv.Handle](ext); !ok {
			message.Insert(ext, h.kv)
		}
	}
	if h.proxy != nil {
		if _, ok := message.Get[*proxy.Handle](ext); !ok {
			message.Insert(ext, h.proxy)
		}
	}

	if req.Body.IsStream() {
		// Handlers may leave the request stream unread.
		defer req.Body.Stream().Close()
	}

	resp := h.dispatcher.Oneshot(req)
	if err := WriteResponse(ctx, w, resp); err != nil {
		h.logger.WarnContext(ctx, "response write failed",
			logger.Component("nethttp"),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
	}
}

func (h *Handler) conversionError(err error) *message.Response {
	status := http.StatusBadRequest
	if isTooLarge(err) {
		status = http.StatusRequestEntityTooLarge
	}
	b, jerr := body.JSON(map[string]any{
		"error": map[string]any{"status": status, "message": err.Error()},
	})
	if jerr != nil {
		b = body.FromString(err.Error())
	}
	resp := message.NewResponse(status, b)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}
