package middleware

import (
	"errors"
	"strconv"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/message"
)

var (
	ErrLimiterRequired = errors.New("ratelimit middleware: limiter is required")
	ErrMetricsRequired = errors.New("metrics middleware: metrics are required")
)

// errorResponse renders the JSON error envelope for statuses outside the
// edge error taxonomy (413, 429).
func errorResponse(status int, msg string) *message.Response {
	b, err := body.JSON(map[string]any{
		"error": map[string]any{"status": status, "message": msg},
	})
	if err != nil {
		b = body.FromString(msg)
	}
	resp := message.NewResponse(status, b)
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Content-Length", strconv.Itoa(b.Len()))
	return resp
}
