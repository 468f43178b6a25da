package response

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/message"
)

const (
	ContentTypeText   = "text/plain; charset=utf-8"
	ContentTypeHTML   = "text/html; charset=utf-8"
	ContentTypeJSON   = "application/json"
	ContentTypeNDJSON = "application/x-ndjson"
	ContentTypeSSE    = "text/event-stream"
	ContentTypeOctet  = "application/octet-stream"
)

// Text returns a text/plain response.
func Text(status int, content string) *message.Response {
	return Bytes(status, ContentTypeText, []byte(content))
}

// HTML returns a text/html response.
func HTML(status int, content string) *message.Response {
	return Bytes(status, ContentTypeHTML, []byte(content))
}

// Bytes returns a buffered response with the given content type.
// An empty content type falls back to application/octet-stream.
func Bytes(status int, contentType string, content []byte) *message.Response {
	if contentType == "" {
		contentType = ContentTypeOctet
	}
	resp := message.NewResponse(normalizeStatus(status), body.FromBytes(content))
	resp.Header.Set("Content-Type", contentType)
	resp.Header.Set("Content-Length", strconv.Itoa(len(content)))
	return resp
}

// NoContent returns an empty 204 response.
func NoContent() *message.Response {
	return message.NewResponse(http.StatusNoContent, body.Empty())
}

// Status returns an empty response with the given status.
func Status(status int) *message.Response {
	resp := message.NewResponse(normalizeStatus(status), body.Empty())
	if bodyAllowed(resp.Status) {
		resp.Header.Set("Content-Length", "0")
	}
	return resp
}

func normalizeStatus(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
