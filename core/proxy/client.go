package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/logger"
)

// DefaultTimeout bounds a whole upstream exchange.
const DefaultTimeout = 30 * time.Second

// hopHeaders are connection-scoped and never forwarded.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// HTTPClient is a Client forwarding over net/http. Request and response
// bodies are streamed in both directions.
type HTTPClient struct {
	client *http.Client
	logger *slog.Logger
	decode bool
}

var _ Client = (*HTTPClient)(nil)

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.client = c
		}
	}
}

// WithTimeout sets the exchange timeout on the underlying client.
func WithTimeout(d time.Duration) ClientOption {
	return func(h *HTTPClient) {
		h.client.Timeout = d
	}
}

// WithLogger sets the logger for upstream failures.
func WithLogger(l *slog.Logger) ClientOption {
	return func(h *HTTPClient) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithDecompression decodes gzip and brotli upstream responses, removing
// Content-Encoding and Content-Length from the forwarded response.
func WithDecompression(enabled bool) ClientOption {
	return func(h *HTTPClient) {
		h.decode = enabled
	}
}

// NewHTTPClient returns a client with DefaultTimeout.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	h := &HTTPClient{
		client: &http.Client{Timeout: DefaultTimeout},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Send performs the upstream exchange. Transport failures are Internal
// errors wrapping ErrUpstream.
func (h *HTTPClient) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.URL == nil {
		return nil, edgeerr.Internal(ErrInvalidTarget)
	}

	var (
		reqBody io.Reader = http.NoBody
		length  int64
	)
	if req.Body.IsStream() {
		reqBody = req.Body.Stream().Reader(ctx)
		length = -1
	} else if n := req.Body.Len(); n > 0 {
		reqBody = bytes.NewReader(req.Body.Bytes())
		length = int64(n)
	}

	out, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), reqBody)
	if err != nil {
		return nil, edgeerr.Internal(fmt.Errorf("%w: %w", ErrInvalidTarget, err))
	}
	out.ContentLength = length
	copyHeader(out.Header, req.Header)
	out.Header.Del("Host")
	out.Header.Del("Content-Length")

	start := time.Now()
	resp, err := h.client.Do(out)
	if err != nil {
		h.logger.ErrorContext(ctx, "upstream request failed",
			logger.Component("proxy"),
			logger.Method(req.Method),
			logger.Path(req.URL.Redacted()),
			logger.Elapsed(start),
			logger.Error(err),
		)
		return nil, edgeerr.Internal(fmt.Errorf("%w: %w", ErrUpstream, err))
	}

	result := NewResponse(resp.StatusCode, body.FromReader(resp.Body))
	copyHeader(result.Header, resp.Header)

	if h.decode {
		if enc := resp.Header.Get("Content-Encoding"); enc != "" {
			decoded, err := Decode(ctx, enc, result.Body)
			if err == nil {
				result.Body = decoded
				result.Header.Del("Content-Encoding")
				result.Header.Del("Content-Length")
			}
		}
	}

	h.logger.DebugContext(ctx, "upstream request completed",
		logger.Component("proxy"),
		logger.Method(req.Method),
		logger.Path(req.URL.Redacted()),
		logger.StatusCode(resp.StatusCode),
		logger.Elapsed(start),
	)
	return result, nil
}

// copyHeader copies src into dst, dropping hop-by-hop headers and any
// header named by src's Connection header.
func copyHeader(dst, src http.Header) {
	drop := make(map[string]struct{}, len(hopHeaders))
	for _, h := range hopHeaders {
		drop[h] = struct{}{}
	}
	for _, v := range src.Values("Connection") {
		for f := range strings.SplitSeq(v, ",") {
			if f = textproto.TrimString(f); f != "" {
				drop[textproto.CanonicalMIMEHeaderKey(f)] = struct{}{}
			}
		}
	}
	for k, vv := range src {
		if _, ok := drop[textproto.CanonicalMIMEHeaderKey(k)]; ok {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
