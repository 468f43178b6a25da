package demo

import (
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/extract"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/kv"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/proxy"
	"github.com/dmitrymomot/edgezero/core/response"
)

const counterPrefix = "counter:"

type echoParams struct {
	Name string `path:"name" validate:"required"`
}

type echoBody struct {
	Name string `json:"name" validate:"required;max:64"`
}

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type counter struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func root(*handler.Context) (*message.Response, error) {
	return response.Text(http.StatusOK, Name+" App"), nil
}

func echo(ctx *handler.Context) (*message.Response, error) {
	p, err := extract.ValidatedPath[echoParams]().Extract(ctx)
	if err != nil {
		return nil, err
	}
	return response.Text(http.StatusOK, fmt.Sprintf("Hello, %s!", p.Name)), nil
}

func echoJSON(ctx *handler.Context) (*message.Response, error) {
	in, err := extract.ValidatedJSON[echoBody]().Extract(ctx)
	if err != nil {
		return nil, err
	}
	return response.Text(http.StatusOK, fmt.Sprintf("Hello, %s!", in.Name)), nil
}

func headers(ctx *handler.Context) (*message.Response, error) {
	h, err := extract.Headers().Extract(ctx)
	if err != nil {
		return nil, err
	}
	ua := h.Get("User-Agent")
	if ua == "" {
		ua = "(unknown)"
	}
	host, _ := extract.ForwardedHost().Extract(ctx)
	return response.Text(http.StatusOK, fmt.Sprintf("ua=%s host=%s", ua, host)), nil
}

func stream(*handler.Context) (*message.Response, error) {
	return response.Stream(http.StatusOK, "text/plain; charset=utf-8", func(yield func([]byte, error) bool) {
		for i := range 5 {
			if !yield(fmt.Appendf(nil, "chunk %d\n", i), nil) {
				return
			}
		}
	}), nil
}

func events(*handler.Context) (*message.Response, error) {
	return response.SSE(func(yield func(response.Event) bool) {
		for i := range 3 {
			ev := response.Event{ID: fmt.Sprint(i + 1), Name: "tick", Data: map[string]int{"n": i}}
			if !yield(ev) {
				return
			}
		}
	}), nil
}

func items(*handler.Context) (*message.Response, error) {
	var seq iter.Seq[item] = func(yield func(item) bool) {
		for i, name := range []string{"alpha", "beta", "gamma"} {
			if !yield(item{ID: i + 1, Name: name}) {
				return
			}
		}
	}
	return response.StreamJSON(seq), nil
}

func readCounter(ctx *handler.Context) (*message.Response, error) {
	store, err := extract.KV().Extract(ctx)
	if err != nil {
		return nil, err
	}
	name := ctx.Param("name")
	v, ok, err := kv.Get[int](ctx, store, counterPrefix+name)
	if err != nil {
		return nil, kv.ToEdgeError(err)
	}
	if !ok {
		return nil, kv.ToEdgeError(&kv.NotFoundError{Key: counterPrefix + name})
	}
	return response.JSON(counter{Name: name, Value: v})
}

func incrementCounter(ctx *handler.Context) (*message.Response, error) {
	store, err := extract.KV().Extract(ctx)
	if err != nil {
		return nil, err
	}
	name := ctx.Param("name")
	v, err := kv.Update(ctx, store, counterPrefix+name, 0, func(n int) int { return n + 1 })
	if err != nil {
		return nil, kv.ToEdgeError(err)
	}
	return response.JSON(counter{Name: name, Value: v})
}

func resetCounter(ctx *handler.Context) (*message.Response, error) {
	store, err := extract.KV().Extract(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Delete(ctx, counterPrefix+ctx.Param("name")); err != nil {
		return nil, kv.ToEdgeError(err)
	}
	return response.NoContent(), nil
}

func listCounters(ctx *handler.Context) (*message.Response, error) {
	store, err := extract.KV().Extract(ctx)
	if err != nil {
		return nil, err
	}
	keys, err := store.ListKeys(ctx, counterPrefix)
	if err != nil {
		return nil, kv.ToEdgeError(err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, counterPrefix))
	}
	return response.JSON(map[string][]string{"counters": names})
}

func proxyTo(upstream *url.URL) handler.HandlerFunc {
	return func(ctx *handler.Context) (*message.Response, error) {
		if upstream == nil {
			return nil, edgeerr.BadRequest("no upstream configured")
		}
		p, err := extract.Proxy().Extract(ctx)
		if err != nil {
			return nil, err
		}
		req := ctx.Request()
		target := upstream.JoinPath(ctx.Param("*"))
		target.RawQuery = req.URL.RawQuery
		return p.Forward(ctx, proxy.FromRequest(req, target))
	}
}

// preflight answers OPTIONS requests the CORS middleware lets through.
func preflight(*handler.Context) (*message.Response, error) {
	return response.NoContent(), nil
}
