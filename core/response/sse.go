package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/dmitrymomot/edgezero/core/message"
)

// Event is a single Server-Sent Event. Data that is not a string or []byte
// is encoded as JSON.
type Event struct {
	ID    string
	Name  string
	Data  any
	Retry int
}

// SSE returns a 200 text/event-stream response emitting one frame per event.
func SSE(events iter.Seq[Event]) *message.Response {
	resp := Stream(0, ContentTypeSSE, func(yield func([]byte, error) bool) {
		if !yield([]byte(": connected\n\n"), nil) {
			return
		}
		for ev := range events {
			frame, err := encodeEvent(ev)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(frame, nil) {
				return
			}
		}
	})
	resp.Header.Set("Connection", "keep-alive")
	resp.Header.Set("X-Accel-Buffering", "no")
	return resp
}

var (
	// Single-line fields must not start new fields.
	stripNewlines = strings.NewReplacer("\r", "", "\n", "")
	// Every line ending becomes its own data line.
	normalizeNewlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

func encodeEvent(ev Event) ([]byte, error) {
	var data string
	switch v := ev.Data.(type) {
	case nil:
	case string:
		data = v
	case []byte:
		data = string(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode event data: %w", err)
		}
		data = string(raw)
	}

	var buf bytes.Buffer
	if id := stripNewlines.Replace(ev.ID); id != "" {
		fmt.Fprintf(&buf, "id: %s\n", id)
	}
	if name := stripNewlines.Replace(ev.Name); name != "" {
		fmt.Fprintf(&buf, "event: %s\n", name)
	}
	if ev.Retry > 0 {
		fmt.Fprintf(&buf, "retry: %d\n", ev.Retry)
	}
	for line := range strings.SplitSeq(normalizeNewlines.Replace(data), "\n") {
		fmt.Fprintf(&buf, "data: %s\n", line)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
