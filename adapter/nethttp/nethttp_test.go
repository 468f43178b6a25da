package nethttp_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgezero/adapter/nethttp"
	"github.com/dmitrymomot/edgezero/core/app"
	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/extract"
	"github.com/dmitrymomot/edgezero/core/handler"
	"github.com/dmitrymomot/edgezero/core/kv"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/response"
	"github.com/dmitrymomot/edgezero/core/router"
	"github.com/dmitrymomot/edgezero/core/server"
)

func TestToCoreRequestBuffersJSON(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/test?x=1", strings.NewReader(`{"name":"test"}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.Header.Set("X-Test", "1")
	r.RemoteAddr = "127.0.0.1:4000"

	req, err := nethttp.ToCoreRequest(r, 0)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/test", req.Path())
	assert.Equal(t, "x=1", req.URL.RawQuery)
	assert.Equal(t, "1", req.Header.Get("X-Test"))
	assert.Equal(t, "example.com", req.Header.Get("Host"))
	require.False(t, req.Body.IsStream())
	assert.JSONEq(t, `{"name":"test"}`, string(req.Body.Bytes()))

	addr, ok := message.Get[nethttp.RemoteAddr](req.Extensions())
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:4000", string(addr))
	assert.Equal(t, "127.0.0.1", addr.Host())
}

func TestToCoreRequestStreamsOtherBodies(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("binary data"))
	r.Header.Set("Content-Type", "application/octet-stream")

	req, err := nethttp.ToCoreRequest(r, 0)
	require.NoError(t, err)
	require.True(t, req.Body.IsStream())

	collected, err := body.Collect(context.Background(), req.Body, 0)
	require.NoError(t, err)
	assert.Equal(t, "binary data", string(collected.Bytes()))
}

func TestToCoreRequestEmptyBody(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/demo", nil)
	req, err := nethttp.ToCoreRequest(r, 0)
	require.NoError(t, err)
	assert.False(t, req.Body.IsStream())
	assert.Equal(t, 0, req.Body.Len())
}

func TestToCoreRequestLimit(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"too long"}`))
	r.Header.Set("Content-Type", "application/json")

	_, err := nethttp.ToCoreRequest(r, 4)
	require.ErrorIs(t, err, body.ErrBodyTooLarge)
}

func TestIsJSONContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ct   string
		want bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/vnd.api+json", true},
		{"APPLICATION/VND.CUSTOM+JSON; CHARSET=UTF-8", true},
		{"text/json", false},
		{"application/json+xml", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nethttp.IsJSONContentType(tt.ct), tt.ct)
	}

	assert.True(t, nethttp.IsBufferedContentType("application/x-www-form-urlencoded"))
	assert.False(t, nethttp.IsBufferedContentType("text/plain"))
}

func TestWriteResponseOnce(t *testing.T) {
	t.Parallel()

	resp := response.Text(http.StatusCreated, "hello")
	resp.Header.Set("X-Custom", "v")

	rec := httptest.NewRecorder()
	require.NoError(t, nethttp.WriteResponse(context.Background(), rec, resp))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "v", rec.Header().Get("X-Custom"))
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
}

func TestWriteResponseStreamFlushes(t *testing.T) {
	t.Parallel()

	resp := message.NewResponse(http.StatusOK, body.FromChunks([]byte("a"), []byte("b"), []byte("c")))
	rec := httptest.NewRecorder()
	require.NoError(t, nethttp.WriteResponse(context.Background(), rec, resp))

	assert.Equal(t, "abc", rec.Body.String())
	assert.True(t, rec.Flushed)
	assert.Empty(t, rec.Header().Get("Content-Length"))
}

func TestHandlerServesApp(t *testing.T) {
	t.Parallel()

	type greet struct {
		Name string `json:"name" validate:"required"`
	}

	svc := router.NewBuilder().
		Get("/hello/{name}", func(ctx *handler.Context) (*message.Response, error) {
			return response.Text(http.StatusOK, "hello "+ctx.Param("name")), nil
		}).
		Post("/greet", func(ctx *handler.Context) (*message.Response, error) {
			in, err := extract.ValidatedJSON[greet]().Extract(ctx)
			if err != nil {
				return nil, err
			}
			return response.JSON(map[string]string{"greeting": "hi " + in.Name})
		}).
		Get("/count", func(ctx *handler.Context) (*message.Response, error) {
			store, err := extract.KV().Extract(ctx)
			if err != nil {
				return nil, err
			}
			n, err := kv.Update(ctx, store, "count", 0, func(n int) int { return n + 1 })
			if err != nil {
				return nil, kv.ToEdgeError(err)
			}
			return response.JSON(map[string]int{"count": n})
		}).
		Build()

	a := app.New(svc, app.WithKV(kv.NewHandle(kv.NewMemoryStore())))
	ts := httptest.NewServer(nethttp.NewHandler(a))
	t.Cleanup(ts.Close)

	res, err := http.Get(ts.URL + "/hello/world")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "hello world", readAll(t, res))

	res, err = http.Post(ts.URL+"/greet", "application/json", strings.NewReader(`{"name":"ada"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"greeting":"hi ada"}`, readAll(t, res))

	res, err = http.Post(ts.URL+"/greet", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	_ = readAll(t, res)

	for want := 1; want <= 2; want++ {
		res, err = http.Get(ts.URL + "/count")
		require.NoError(t, err)
		assert.JSONEq(t, `{"count":`+strconv.Itoa(want)+`}`, readAll(t, res))
	}

	res, err = http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	_ = readAll(t, res)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/hello/world", nil)
	require.NoError(t, err)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Equal(t, "GET", res.Header.Get("Allow"))
	_ = readAll(t, res)
}

func TestHandlerRejectsLargeJSON(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().Post("/", func(*handler.Context) (*message.Response, error) {
		return response.NoContent(), nil
	}).Build()
	ts := httptest.NewServer(nethttp.NewHandler(svc, nethttp.WithMaxBufferedBody(8)))
	t.Cleanup(ts.Close)

	res, err := http.Post(ts.URL, "application/json", strings.NewReader(`{"name":"much too long"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, res.StatusCode)
	assert.Contains(t, readAll(t, res), `"status":413`)
}

func TestHandlerStreamsResponse(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().Post("/echo", func(ctx *handler.Context) (*message.Response, error) {
		return message.NewResponse(http.StatusOK, ctx.Body()), nil
	}).Build()
	ts := httptest.NewServer(nethttp.NewHandler(svc))
	t.Cleanup(ts.Close)

	res, err := http.Post(ts.URL+"/echo", "application/octet-stream", strings.NewReader("streamed payload"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "streamed payload", readAll(t, res))
}

type captureDispatcher struct {
	req *message.Request
}

func (d *captureDispatcher) Oneshot(req *message.Request) *message.Response {
	d.req = req
	return response.NoContent()
}

func TestHandlerClosesUnreadRequestStream(t *testing.T) {
	t.Parallel()

	d := &captureDispatcher{}
	r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("raw bytes"))
	r.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()

	nethttp.NewHandler(d).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, d.req)
	require.True(t, d.req.Body.IsStream())
	assert.True(t, d.req.Body.Stream().Done())
}

func TestNewHandlerNilDispatcher(t *testing.T) {
	t.Parallel()
	assert.PanicsWithValue(t, nethttp.ErrNilDispatcher, func() { nethttp.NewHandler(nil) })
}

func TestServe(t *testing.T) {
	t.Parallel()

	svc := router.NewBuilder().Get("/", func(*handler.Context) (*message.Response, error) {
		return response.Text(http.StatusOK, "up"), nil
	}).Build()
	a := app.New(svc)

	cfg := nethttp.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, nethttp.Serve(ctx, a, cfg))
	assert.NotNil(t, a.Proxy(), "proxy client installed")

	cfg.Server.Addr = ""
	err := nethttp.Serve(context.Background(), app.New(svc), cfg)
	require.ErrorIs(t, err, server.ErrMissingAddress)
}

func readAll(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}
