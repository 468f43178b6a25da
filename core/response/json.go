package response

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/message"
)

// JSON encodes v as a 200 application/json response.
func JSON(v any) (*message.Response, error) {
	return JSONWithStatus(http.StatusOK, v)
}

// JSONWithStatus encodes v as an application/json response with status.
// A zero status resolves to 204 for nil data and 200 otherwise; 204 and 304
// carry no body. Encoding failures are Internal errors.
func JSONWithStatus(status int, v any) (*message.Response, error) {
	if status == 0 {
		if v == nil {
			status = http.StatusNoContent
		} else {
			status = http.StatusOK
		}
	}
	if !bodyAllowed(status) {
		return message.NewResponse(status, body.Empty()), nil
	}

	b, err := body.JSON(v)
	if err != nil {
		return nil, edgeerr.Internal(err)
	}
	resp := message.NewResponse(status, b)
	resp.Header.Set("Content-Type", ContentTypeJSON)
	resp.Header.Set("Content-Length", strconv.Itoa(b.Len()))
	return resp, nil
}
