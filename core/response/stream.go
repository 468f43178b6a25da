package response

import (
	"encoding/json"
	"iter"

	"github.com/dmitrymomot/edgezero/core/body"
	"github.com/dmitrymomot/edgezero/core/message"
)

// Stream returns a streaming response whose chunks come from seq.
// The first error yielded by seq terminates the stream.
func Stream(status int, contentType string, seq iter.Seq2[[]byte, error]) *message.Response {
	if contentType == "" {
		contentType = ContentTypeOctet
	}
	resp := message.NewResponse(normalizeStatus(status), body.FromSeq(seq))
	resp.Header.Set("Content-Type", contentType)
	resp.Header.Set("Cache-Control", "no-cache")
	return resp
}

// StreamJSON returns a 200 newline-delimited JSON stream with one line per
// item. An item that fails to encode terminates the stream.
func StreamJSON[T any](items iter.Seq[T]) *message.Response {
	return Stream(0, ContentTypeNDJSON, func(yield func([]byte, error) bool) {
		for item := range items {
			line, err := json.Marshal(item)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(append(line, '\n'), nil) {
				return
			}
		}
	})
}
