package body

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
)

// Kind discriminates the two body representations.
type Kind uint8

const (
	// KindOnce is a fully materialized byte buffer.
	KindOnce Kind = iota
	// KindStream is a lazily produced chunk sequence.
	KindStream
)

func (k Kind) String() string {
	if k == KindStream {
		return "stream"
	}
	return "once"
}

// Body is a request or response payload. The zero value is an empty Once body.
type Body struct {
	kind   Kind
	data   []byte
	stream *Stream
}

// Empty returns an empty Once body.
func Empty() Body {
	return Body{}
}

// FromBytes returns a Once body holding b. The slice is not copied and must
// not be modified afterwards.
func FromBytes(b []byte) Body {
	return Body{kind: KindOnce, data: b}
}

// FromString returns a Once body holding s.
func FromString(s string) Body {
	return Body{kind: KindOnce, data: []byte(s)}
}

// JSON serializes v into a Once body.
func JSON(v any) (Body, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Body{}, fmt.Errorf("%w: %w", ErrFailedToEncodeJSON, err)
	}
	return FromBytes(data), nil
}

// FromStream wraps s as a Stream body. A nil stream yields an empty stream.
func FromStream(s *Stream) Body {
	if s == nil {
		s = NewStream(func() ([]byte, error) { return nil, io.EOF })
	}
	return Body{kind: KindStream, stream: s}
}

// FromSeq returns a Stream body pulling chunks from seq. Iteration stops at
// the first non-nil error. seq is not started until the first Next, so an
// unread body holds no resources.
func FromSeq(seq iter.Seq2[[]byte, error]) Body {
	s := &Stream{}
	var pull func() ([]byte, error, bool)
	s.next = func() ([]byte, error) {
		if pull == nil {
			var stop func()
			pull, stop = iter.Pull2(seq)
			s.stop = stop
		}
		chunk, err, ok := pull()
		if !ok {
			return nil, io.EOF
		}
		return chunk, err
	}
	return FromStream(s)
}

// FromChunks returns a Stream body yielding chunks in order.
func FromChunks(chunks ...[]byte) Body {
	i := 0
	return FromStream(NewStream(func() ([]byte, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}
		c := chunks[i]
		i++
		return c, nil
	}))
}

// FromReader returns a Stream body reading from r in chunks of up to
// DefaultChunkSize bytes. r is closed when the stream is exhausted or closed.
func FromReader(r io.Reader) Body {
	buf := make([]byte, DefaultChunkSize)
	s := NewStream(func() ([]byte, error) {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			// Deliver data now, surface err on the next call.
			if err != nil && err != io.EOF {
				pending := err
				r = errReader{pending}
			}
			return chunk, nil
		}
		if err == nil {
			return nil, nil
		}
		return nil, err
	})
	if c, ok := r.(io.Closer); ok {
		s.stop = func() { _ = c.Close() }
	}
	return FromStream(s)
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

// Kind reports the body representation.
func (b Body) Kind() Kind {
	return b.kind
}

// IsStream reports whether the body is a Stream.
func (b Body) IsStream() bool {
	return b.kind == KindStream
}

// Len returns the buffered length, or -1 for a Stream.
func (b Body) Len() int {
	if b.IsStream() {
		return -1
	}
	return len(b.data)
}

// Bytes returns the buffered bytes. It panics with ErrStreamingBody on a
// Stream body.
func (b Body) Bytes() []byte {
	if b.IsStream() {
		panic(ErrStreamingBody)
	}
	return b.data
}

// Stream returns the underlying stream, or nil for a Once body.
func (b Body) Stream() *Stream {
	return b.stream
}

// DecodeJSON unmarshals a Once body into v. A Stream body yields
// ErrStreamingBody.
func (b Body) DecodeJSON(v any) error {
	if b.IsStream() {
		return ErrStreamingBody
	}
	if err := json.Unmarshal(b.data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToDecodeJSON, err)
	}
	return nil
}

// ToStream returns a Stream body yielding the buffered bytes as a single
// chunk. A Stream body is returned unchanged.
func (b Body) ToStream() Body {
	if b.IsStream() {
		return b
	}
	if len(b.data) == 0 {
		return FromChunks()
	}
	return FromChunks(b.data)
}

func (b Body) String() string {
	if b.IsStream() {
		return "body.Stream"
	}
	return fmt.Sprintf("body.Once(len=%d)", len(b.data))
}

// Collect turns b into a Once body. Stream bodies are fully consumed; limit
// bounds the total size in bytes (limit <= 0 means no bound).
func Collect(ctx context.Context, b Body, limit int64) (Body, error) {
	if !b.IsStream() {
		if limit > 0 && int64(len(b.data)) > limit {
			return Body{}, ErrBodyTooLarge
		}
		return b, nil
	}

	s := b.stream
	defer s.Close()

	var buf bytes.Buffer
	for {
		chunk, err := s.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return Body{}, err
		}
		if limit > 0 && int64(buf.Len()+len(chunk)) > limit {
			return Body{}, ErrBodyTooLarge
		}
		buf.Write(chunk)
	}
	return FromBytes(buf.Bytes()), nil
}
