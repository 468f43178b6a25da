package router

import (
	"net/http"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/message"
)

// listingHandler serves the route table as [{"method","path"}, ...].
type listingHandler struct {
	core *core
}

func (l listingHandler) Call(*handler.Context) (*message.Response, error) {
	table := make([]RouteInfo, len(l.core.routes))
	for i, r := range l.core.routes {
		table[i] = RouteInfo{Method: r.method, Path: r.pattern}
	}

	b, err := body.JSON(table)
	if err != nil {
		return nil, edgeerr.Internal(err)
	}
	resp := message.NewResponse(http.StatusOK, b)
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}
