package health

import (
	"net/http"

	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/response"
)

// Liveness answers "ALIVE" without checking dependencies.
func Liveness(*handler.Context) (*message.Response, error) {
	return response.WithNoCache(response.Text(http.StatusOK, "ALIVE")), nil
}

// NoContent answers 204 for high-frequency pings.
func NoContent(*handler.Context) (*message.Response, error) {
	return response.NoContent(), nil
}
