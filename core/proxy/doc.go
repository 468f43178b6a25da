// Package proxy forwards requests to upstream services.
//
// A Client sends a Request and returns a Response; Handle wraps a Client and
// converts the result into a core response, mapping failures to edge
// errors. HTTPClient is the net/http implementation: it strips hop-by-hop
// headers, streams bodies in both directions and can decode gzip and brotli
// upstream responses.
//
//	h := proxy.NewHandle(proxy.NewHTTPClient(proxy.WithDecompression(true)))
//
//	target, _ := url.Parse("https://api.example.com" + ctx.Request().Path())
//	return h.Forward(ctx, proxy.FromRequest(ctx.Request(), target))
//
// DecodeGzip and DecodeBrotli are also usable on their own to decode any
// body lazily.
package proxy
