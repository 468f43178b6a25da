package response

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/edgezero/core/message"
)

// WithHeader sets header key to value on resp and returns it.
func WithHeader(resp *message.Response, key, value string) *message.Response {
	if resp == nil {
		return nil
	}
	resp.Header.Set(key, value)
	return resp
}

// WithHeaders sets every header in headers on resp.
func WithHeaders(resp *message.Response, headers map[string]string) *message.Response {
	if resp == nil {
		return nil
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

// WithCookie appends a Set-Cookie header for cookie. Invalid cookies are skipped.
func WithCookie(resp *message.Response, cookie *http.Cookie) *message.Response {
	if resp == nil || cookie == nil {
		return resp
	}
	if v := cookie.String(); v != "" {
		resp.Header.Add("Set-Cookie", v)
	}
	return resp
}

// WithCache sets a public Cache-Control max-age.
func WithCache(resp *message.Response, maxAge time.Duration) *message.Response {
	return WithHeader(resp, "Cache-Control", "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
}

// WithNoCache disables client and proxy caching.
func WithNoCache(resp *message.Response) *message.Response {
	return WithHeader(resp, "Cache-Control", "no-store, no-cache, must-revalidate")
}
