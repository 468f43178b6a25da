package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"

	"github.com/dmitrymomot/edgezero/core/body"
)

// DecodeGzip returns a Stream body yielding the gzip-decoded content of b.
// A malformed header surfaces as an error on the first chunk.
func DecodeGzip(ctx context.Context, b body.Body) body.Body {
	return body.FromReader(&lazyReader{
		src: source(ctx, b),
		open: func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
	})
}

// DecodeBrotli returns a Stream body yielding the brotli-decoded content of b.
func DecodeBrotli(ctx context.Context, b body.Body) body.Body {
	return body.FromReader(&lazyReader{
		src: source(ctx, b),
		open: func(r io.Reader) (io.Reader, error) {
			return brotli.NewReader(r), nil
		},
	})
}

// Decode dispatches on a Content-Encoding value. Empty and identity
// encodings return b unchanged.
func Decode(ctx context.Context, encoding string, b body.Body) (body.Body, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return b, nil
	case "gzip", "x-gzip":
		return DecodeGzip(ctx, b), nil
	case "br":
		return DecodeBrotli(ctx, b), nil
	default:
		return b, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
}

func source(ctx context.Context, b body.Body) io.ReadCloser {
	if b.IsStream() {
		return b.Stream().Reader(ctx)
	}
	return io.NopCloser(bytes.NewReader(b.Bytes()))
}

// lazyReader defers decoder construction to the first Read so that header
// errors flow through the stream.
type lazyReader struct {
	src  io.ReadCloser
	open func(io.Reader) (io.Reader, error)
	dec  io.Reader
	err  error
}

func (r *lazyReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.dec == nil {
		dec, err := r.open(r.src)
		if err != nil {
			r.err = err
			return 0, err
		}
		r.dec = dec
	}
	return r.dec.Read(p)
}

func (r *lazyReader) Close() error {
	if c, ok := r.dec.(io.Closer); ok {
		_ = c.Close()
	}
	return r.src.Close()
}
