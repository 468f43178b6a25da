package proxy_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/edgeerr"
	"github.com/dmitrymomot/edgezero/core/message"
	"github.com/dmitrymomot/edgezero/core/proxy"
)

func readAll(t *testing.T, b body.Body) string {
	t.Helper()
	once, err := body.Collect(context.Background(), b, 0)
	require.NoError(t, err)
	return string(once.Bytes())
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func brotlied(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	req, err := proxy.NewRequest("", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Empty(t, req.Header)
	assert.Equal(t, 0, req.Body.Len())

	_, err = proxy.NewRequest(http.MethodGet, "/relative")
	assert.ErrorIs(t, err, proxy.ErrInvalidTarget)
}

func TestFromRequestPreservesParts(t *testing.T) {
	t.Parallel()

	req, err := message.NewRequest(http.MethodPost, "/original", body.FromString("payload"))
	require.NoError(t, err)
	req.Header.Set("X-Custom", "value")
	message.Insert(req.Extensions(), 42)

	target, _ := url.Parse("https://backend.example.com/api")
	pr := proxy.FromRequest(req, target)

	assert.Equal(t, http.MethodPost, pr.Method)
	assert.Equal(t, target, pr.URL)
	assert.Equal(t, "value", pr.Header.Get("X-Custom"))
	assert.Equal(t, "payload", string(pr.Body.Bytes()))
	v, ok := message.Get[int](pr.Extensions())
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	pr.Header.Set("X-Custom", "changed")
	assert.Equal(t, "value", req.Header.Get("X-Custom"))
}

func TestHandleForwardPreservesStreamingBody(t *testing.T) {
	t.Parallel()

	client := proxy.ClientFunc(func(_ context.Context, req *proxy.Request) (*proxy.Response, error) {
		assert.Equal(t, "true", req.Header.Get("X-Demo"))
		resp := proxy.NewResponse(http.StatusOK, body.FromChunks([]byte("stream-one"), []byte("stream-two")))
		resp.Header.Set("X-Upstream", "1")
		return resp, nil
	})

	req, err := proxy.NewRequest(http.MethodGet, "https://example.com/stream")
	require.NoError(t, err)
	req.Header.Set("X-Demo", "true")

	resp, err := proxy.NewHandle(client).Forward(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "1", resp.Header.Get("X-Upstream"))
	assert.True(t, resp.Body.IsStream())
	assert.Equal(t, "stream-onestream-two", readAll(t, resp.Body))
}

func TestHandleForwardErrors(t *testing.T) {
	t.Parallel()

	req, err := proxy.NewRequest(http.MethodGet, "https://example.com")
	require.NoError(t, err)

	_, err = proxy.NewHandle(nil).Forward(context.Background(), req)
	var ee *edgeerr.Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, edgeerr.KindInternal, ee.Kind())
	assert.ErrorIs(t, err, proxy.ErrNoClient)

	failing := proxy.ClientFunc(func(context.Context, *proxy.Request) (*proxy.Response, error) {
		return nil, edgeerr.BadRequest("upstream rejected")
	})
	_, err = proxy.NewHandle(failing).Forward(context.Background(), req)
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, edgeerr.KindBadRequest, ee.Kind())
}

func TestHTTPClientRoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("X-Hop"))
		assert.Equal(t, "kept", r.Header.Get("X-Kept"))
		data, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Echo", "yes")
		w.Header().Set("Keep-Alive", "timeout=5")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	req, err := proxy.NewRequest(http.MethodPost, srv.URL+"/echo")
	require.NoError(t, err)
	req.Header.Set("Connection", "X-Hop")
	req.Header.Set("X-Hop", "dropped")
	req.Header.Set("X-Kept", "kept")
	req.Body = body.FromChunks([]byte("hello "), []byte("upstream"))

	resp, err := proxy.NewHTTPClient().Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "yes", resp.Header.Get("X-Echo"))
	assert.Empty(t, resp.Header.Get("Keep-Alive"))
	assert.True(t, resp.Body.IsStream())
	assert.Equal(t, "hello upstream", readAll(t, resp.Body))
}

func TestHTTPClientDecompression(t *testing.T) {
	t.Parallel()

	payloads := map[string][]byte{
		"gzip": gzipped(t, "plain gzip"),
		"br":   brotlied(t, "plain brotli"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := r.URL.Query().Get("enc")
		w.Header().Set("Content-Encoding", enc)
		_, _ = w.Write(payloads[enc])
	}))
	t.Cleanup(srv.Close)

	client := proxy.NewHTTPClient(proxy.WithDecompression(true))
	tests := []struct {
		enc  string
		want string
	}{
		{"gzip", "plain gzip"},
		{"br", "plain brotli"},
	}
	for _, tt := range tests {
		t.Run(tt.enc, func(t *testing.T) {
			t.Parallel()
			req, err := proxy.NewRequest(http.MethodGet, srv.URL+"/?enc="+tt.enc)
			require.NoError(t, err)
			req.Header.Set("Accept-Encoding", tt.enc)

			resp, err := client.Send(context.Background(), req)
			require.NoError(t, err)
			assert.Empty(t, resp.Header.Get("Content-Encoding"))
			assert.Equal(t, tt.want, readAll(t, resp.Body))
		})
	}
}

func TestHTTPClientUpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	req, err := proxy.NewRequest(http.MethodGet, target)
	require.NoError(t, err)

	_, err = proxy.NewHTTPClient().Send(context.Background(), req)
	assert.ErrorIs(t, err, proxy.ErrUpstream)
	var ee *edgeerr.Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, http.StatusInternalServerError, ee.Status())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	b, err := proxy.Decode(ctx, "gzip", body.FromBytes(gzipped(t, "once")))
	require.NoError(t, err)
	assert.Equal(t, "once", readAll(t, b))

	b, err = proxy.Decode(ctx, "br", body.FromBytes(brotlied(t, "chunked")).ToStream())
	require.NoError(t, err)
	assert.Equal(t, "chunked", readAll(t, b))

	b, err = proxy.Decode(ctx, "identity", body.FromString("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", readAll(t, b))

	_, err = proxy.Decode(ctx, "zstd", body.Empty())
	assert.ErrorIs(t, err, proxy.ErrUnsupportedEncoding)

	_, err = body.Collect(ctx, proxy.DecodeGzip(ctx, body.FromString("not gzip")), 0)
	assert.Error(t, err)
}
