package body

import (
	"context"
	"io"
	"iter"
)

// DefaultChunkSize is the chunk size used when streaming from a reader.
const DefaultChunkSize = 8 * 1024

// Stream is a lazy, single-consumer sequence of byte chunks. Once it returns
// io.EOF or an error it is exhausted and every further Next returns io.EOF.
// A Stream is not safe for concurrent use.
type Stream struct {
	next func() ([]byte, error)
	stop func()
	done bool
}

// NewStream returns a stream pulling chunks from next. next signals the end
// of the sequence by returning io.EOF.
func NewStream(next func() ([]byte, error)) *Stream {
	return &Stream{next: next}
}

// NewStreamWithClose is NewStream with a release hook run once when the
// stream is exhausted or closed.
func NewStreamWithClose(next func() ([]byte, error), stop func()) *Stream {
	return &Stream{next: next, stop: stop}
}

// Next returns the next chunk. It returns io.EOF when the stream is
// exhausted, or ctx.Err() if ctx is done before a chunk is pulled.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		s.Close()
		return nil, err
	}
	chunk, err := s.next()
	if err != nil {
		s.Close()
		return nil, err
	}
	return chunk, nil
}

// Done reports whether the stream has been exhausted or closed.
func (s *Stream) Done() bool {
	return s.done
}

// Close releases the underlying source. It is safe to call more than once.
func (s *Stream) Close() {
	if s.done {
		return
	}
	s.done = true
	if s.stop != nil {
		s.stop()
	}
}

// All returns an iterator over the remaining chunks. A terminal error other
// than io.EOF is yielded once as the last element.
func (s *Stream) All(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			chunk, err := s.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				s.Close()
				return
			}
		}
	}
}

// Reader adapts the stream to an io.ReadCloser.
func (s *Stream) Reader(ctx context.Context) io.ReadCloser {
	return &streamReader{ctx: ctx, s: s}
}

type streamReader struct {
	ctx context.Context
	s   *Stream
	buf []byte
}

func (r *streamReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		chunk, err := r.s.Next(r.ctx)
		if err != nil {
			return 0, err
		}
		r.buf = chunk
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *streamReader) Close() error {
	r.s.Close()
	return nil
}
