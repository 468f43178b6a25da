package logger

import (
	"log/slog"
	"runtime"
	"strconv"
	"time"
)

// Helpers return an empty Attr for nil or empty input, which slog drops,
// so callers never need nil checks.

// Group nests attrs under name.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errs under "errors", keyed by position.
func Errors(errs ...error) slog.Attr {
	var as []slog.Attr
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// Elapsed records the time since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Method(method string) slog.Attr {
	return slog.String("method", method)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Pattern records the matched route pattern.
func Pattern(pattern string) slog.Attr {
	if pattern == "" {
		return slog.Attr{}
	}
	return slog.String("pattern", pattern)
}

func Query(query string) slog.Attr {
	if query == "" {
		return slog.Attr{}
	}
	return slog.String("query", query)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

func RemoteAddr(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("remote_addr", addr)
}

func UserAgent(ua string) slog.Attr {
	if ua == "" {
		return slog.Attr{}
	}
	return slog.String("user_agent", ua)
}

// BytesIn records the request body size. Negative sizes (unknown length)
// are dropped.
func BytesIn(n int64) slog.Attr {
	if n < 0 {
		return slog.Attr{}
	}
	return slog.Int64("bytes_in", n)
}

func BytesOut(n int64) slog.Attr {
	return slog.Int64("bytes_out", n)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Key records an arbitrary value under key.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

// Stack records the current goroutine stack.
func Stack() slog.Attr {
	buf := make([]byte, 64<<10)
	buf = buf[:runtime.Stack(buf, false)]
	return slog.String("stack", string(buf))
}

// StackTrace records a captured stack.
func StackTrace(stack []byte) slog.Attr {
	if len(stack) == 0 {
		return slog.Attr{}
	}
	return slog.String("stack", string(stack))
}
