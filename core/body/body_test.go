package body_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/edgezero/core/body"
)

func TestOnceBody(t *testing.T) {
	t.Parallel()

	t.Run("zero value is empty once", func(t *testing.T) {
		t.Parallel()
		var b body.Body
		assert.False(t, b.IsStream())
		assert.Equal(t, body.KindOnce, b.Kind())
		assert.Empty(t, b.Bytes())
		assert.Equal(t, 0, b.Len())
	})

	t.Run("from bytes", func(t *testing.T) {
		t.Parallel()
		b := body.FromBytes([]byte("payload"))
		assert.False(t, b.IsStream())
		assert.Equal(t, []byte("payload"), b.Bytes())
		assert.Equal(t, "body.Once(len=7)", b.String())
	})

	t.Run("from string", func(t *testing.T) {
		t.Parallel()
		b := body.FromString("hi")
		assert.Equal(t, "hi", string(b.Bytes()))
		assert.Nil(t, b.Stream())
	})

	t.Run("json round trip", func(t *testing.T) {
		t.Parallel()
		b, err := body.JSON(map[string]int{"n": 1})
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(b.Bytes()))

		var out struct {
			N int `json:"n"`
		}
		require.NoError(t, b.DecodeJSON(&out))
		assert.Equal(t, 1, out.N)
	})

	t.Run("json encode failure", func(t *testing.T) {
		t.Parallel()
		_, err := body.JSON(make(chan int))
		assert.ErrorIs(t, err, body.ErrFailedToEncodeJSON)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		var out map[string]any
		err := body.FromString("{nope").DecodeJSON(&out)
		assert.ErrorIs(t, err, body.ErrFailedToDecodeJSON)
	})
}

func TestStreamBody(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("bytes panics on stream", func(t *testing.T) {
		t.Parallel()
		b := body.FromChunks([]byte("a"))
		assert.True(t, b.IsStream())
		assert.Equal(t, -1, b.Len())
		assert.PanicsWithValue(t, body.ErrStreamingBody, func() { _ = b.Bytes() })
	})

	t.Run("decode json on stream returns error", func(t *testing.T) {
		t.Parallel()
		var out map[string]any
		assert.NotPanics(t, func() {
			err := body.FromChunks([]byte(`{}`)).DecodeJSON(&out)
			assert.ErrorIs(t, err, body.ErrStreamingBody)
		})
	})

	t.Run("exhausted stream yields nothing more", func(t *testing.T) {
		t.Parallel()
		s := body.FromChunks([]byte("a"), []byte("b")).Stream()

		var got []string
		for chunk, err := range s.All(ctx) {
			require.NoError(t, err)
			got = append(got, string(chunk))
		}
		assert.Equal(t, []string{"a", "b"}, got)
		assert.True(t, s.Done())

		for range 3 {
			_, err := s.Next(ctx)
			assert.ErrorIs(t, err, io.EOF)
		}
	})

	t.Run("chunk error terminates stream", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		calls := 0
		s := body.NewStream(func() ([]byte, error) {
			calls++
			if calls == 1 {
				return []byte("x"), nil
			}
			return nil, boom
		})

		chunk, err := s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x", string(chunk))

		_, err = s.Next(ctx)
		assert.ErrorIs(t, err, boom)

		_, err = s.Next(ctx)
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, 2, calls)
	})

	t.Run("cancelled context stops pulling", func(t *testing.T) {
		t.Parallel()
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		s := body.FromChunks([]byte("a")).Stream()
		_, err := s.Next(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, s.Done())
	})

	t.Run("from seq", func(t *testing.T) {
		t.Parallel()
		var seq iter.Seq2[[]byte, error] = func(yield func([]byte, error) bool) {
			for _, s := range []string{"one", "two"} {
				if !yield([]byte(s), nil) {
					return
				}
			}
		}
		b, err := body.Collect(ctx, body.FromSeq(seq), 0)
		require.NoError(t, err)
		assert.Equal(t, "onetwo", string(b.Bytes()))
	})

	t.Run("from reader", func(t *testing.T) {
		t.Parallel()
		data := strings.Repeat("z", body.DefaultChunkSize+10)
		b, err := body.Collect(ctx, body.FromReader(strings.NewReader(data)), 0)
		require.NoError(t, err)
		assert.Equal(t, data, string(b.Bytes()))
	})

	t.Run("reader adapter", func(t *testing.T) {
		t.Parallel()
		s := body.FromChunks([]byte("he"), []byte(""), []byte("llo")).Stream()
		data, err := io.ReadAll(s.Reader(ctx))
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("to stream keeps bytes", func(t *testing.T) {
		t.Parallel()
		b := body.FromString("abc").ToStream()
		assert.True(t, b.IsStream())
		assert.Equal(t, "body.Stream", b.String())

		out, err := body.Collect(ctx, b, 0)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(out.Bytes()))
	})
}

func TestCollect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("once within limit returned as is", func(t *testing.T) {
		t.Parallel()
		b, err := body.Collect(ctx, body.FromString("abc"), 3)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(b.Bytes()))
	})

	t.Run("once over limit", func(t *testing.T) {
		t.Parallel()
		_, err := body.Collect(ctx, body.FromString("abcd"), 3)
		assert.ErrorIs(t, err, body.ErrBodyTooLarge)
	})

	t.Run("stream over limit", func(t *testing.T) {
		t.Parallel()
		b := body.FromChunks([]byte("ab"), []byte("cd"))
		_, err := body.Collect(ctx, b, 3)
		assert.ErrorIs(t, err, body.ErrBodyTooLarge)
		assert.True(t, b.Stream().Done())
	})
}

// Not parallel: counts goroutines.
func TestFromSeqStartsLazily(t *testing.T) {
	ctx := context.Background()
	started := 0
	seq := func(yield func([]byte, error) bool) {
		started++
		for range 10 {
			if !yield([]byte("x"), nil) {
				return
			}
		}
	}

	before := runtime.NumGoroutine()
	bodies := make([]body.Body, 0, 200)
	for range 200 {
		bodies = append(bodies, body.FromSeq(seq))
	}
	assert.Less(t, runtime.NumGoroutine()-before, 10)
	assert.Zero(t, started)

	for _, b := range bodies {
		s := b.Stream()
		chunk, err := s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "x", string(chunk))
		s.Close()
	}
	assert.Equal(t, 200, started)
	assert.Less(t, runtime.NumGoroutine()-before, 10)
}
