package nethttp

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/message"
)

// RemoteAddr is the client address recorded in request extensions.
type RemoteAddr = message.RemoteAddr

// ToCoreRequest converts r into a core request bound to r's context.
// JSON and form bodies larger than limit fail with body.ErrBodyTooLarge;
// limit <= 0 uses DefaultMaxBufferedBody.
func ToCoreRequest(r *http.Request, limit int64) (*message.Request, error) {
	if limit <= 0 {
		limit = DefaultMaxBufferedBody
	}

	u := *r.URL
	if u.Host == "" {
		u.Host = r.Host
	}

	b, err := requestBody(r, limit)
	if err != nil {
		return nil, err
	}

	req := &message.Request{
		Method: r.Method,
		URL:    &u,
		Header: r.Header.Clone(),
		Body:   b,
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if r.Host != "" && req.Header.Get("Host") == "" {
		req.Header.Set("Host", r.Host)
	}
	if r.RemoteAddr != "" {
		message.Insert(req.Extensions(), RemoteAddr(r.RemoteAddr))
	}
	return req.WithContext(r.Context()), nil
}

func requestBody(r *http.Request, limit int64) (body.Body, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return body.Empty(), nil
	}
	if r.ContentLength == 0 && len(r.TransferEncoding) == 0 {
		return body.Empty(), nil
	}
	if !IsBufferedContentType(r.Header.Get("Content-Type")) {
		return body.FromReader(r.Body), nil
	}

	defer r.Body.Close()
	if r.ContentLength > limit {
		return body.Body{}, body.ErrBodyTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return body.Body{}, fmt.Errorf("%w: %w", ErrReadBody, err)
	}
	if int64(len(data)) > limit {
		return body.Body{}, body.ErrBodyTooLarge
	}
	return body.FromBytes(data), nil
}

// IsBufferedContentType reports whether bodies of content type ct are read
// into memory before dispatch.
func IsBufferedContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return IsJSONContentType(mt)
}

// IsJSONContentType reports whether ct is application/json or an
// application/*+json media type. Parameters are ignored.
func IsJSONContentType(ct string) bool {
	mt, _, _ := strings.Cut(ct, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	if mt == "application/json" {
		return true
	}
	typ, sub, ok := strings.Cut(mt, "/")
	return ok && typ == "application" && strings.HasSuffix(sub, "+json")
}

func isTooLarge(err error) bool {
	return errors.Is(err, body.ErrBodyTooLarge)
}
