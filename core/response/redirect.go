package response

import (
	"net/http"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/message"
)

// Redirect returns a 302 Found response pointing at location.
func Redirect(location string) *message.Response {
	return RedirectWithStatus(http.StatusFound, location)
}

// RedirectPermanent returns a 301 Moved Permanently response.
func RedirectPermanent(location string) *message.Response {
	return RedirectWithStatus(http.StatusMovedPermanently, location)
}

// RedirectSeeOther returns a 303 See Other response, typically after a POST.
func RedirectSeeOther(location string) *message.Response {
	return RedirectWithStatus(http.StatusSeeOther, location)
}

// RedirectTemporary returns a 307 Temporary Redirect, preserving the method.
func RedirectTemporary(location string) *message.Response {
	return RedirectWithStatus(http.StatusTemporaryRedirect, location)
}

// RedirectWithStatus returns a redirect with a caller-chosen status.
// Statuses outside 3xx fall back to 302.
func RedirectWithStatus(status int, location string) *message.Response {
	if status < 300 || status > 399 {
		status = http.StatusFound
	}
	resp := message.NewResponse(status, body.Empty())
	resp.Header.Set("Location", location)
	resp.Header.Set("Content-Length", "0")
	return resp
}
