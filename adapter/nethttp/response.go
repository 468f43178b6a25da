package nethttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/edgezero/core/message"
)

// WriteResponse writes resp to w. Once bodies are written in one call;
// stream chunks are written and flushed as they arrive until the stream
// ends, fails or ctx is done. Errors after the header is sent are
// returned but cannot change the status.
func WriteResponse(ctx context.Context, w http.ResponseWriter, resp *message.Response) error {
	h := w.Header()
	for k, vs := range resp.Header {
		h[k] = append([]string(nil), vs...)
	}

	if !resp.Body.IsStream() {
		data := resp.Body.Bytes()
		if h.Get("Content-Length") == "" && bodyAllowed(resp.Status) {
			h.Set("Content-Length", strconv.Itoa(len(data)))
		}
		w.WriteHeader(resp.Status)
		if len(data) == 0 || !bodyAllowed(resp.Status) {
			return nil
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteBody, err)
		}
		return nil
	}

	s := resp.Body.Stream()
	defer s.Close()

	h.Del("Content-Length")
	w.WriteHeader(resp.Status)
	rc := http.NewResponseController(w)
	// Writers without flush support still receive every chunk.
	flush := func() { _ = rc.Flush() }
	flush()

	for {
		chunk, err := s.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			continue
		}
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteBody, err)
		}
		flush()
	}
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
