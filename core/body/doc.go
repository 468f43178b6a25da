// Package body provides the request and response payload type shared by the
// router, handlers and adapters.
//
// A Body is either Once, a fully materialized immutable byte buffer, or
// Stream, a lazily pulled single-consumer sequence of chunks. The variant of a
// Body never changes in place: a Once body can be turned into a Stream with
// ToStream, and a Stream can only become Once by consuming it with Collect.
//
// Basic usage:
//
//	b := body.FromString("hello")
//	if !b.IsStream() {
//		fmt.Println(string(b.Bytes()))
//	}
//
//	s := body.FromChunks([]byte("a"), []byte("b")).Stream()
//	for {
//		chunk, err := s.Next(ctx)
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		if err != nil {
//			return err
//		}
//		process(chunk)
//	}
//
// Bytes panics with ErrStreamingBody when called on a Stream body; callers
// branch on IsStream first. DecodeJSON on a Stream returns ErrStreamingBody
// as an ordinary error.
//
// Streams are not safe for concurrent use.
package body
