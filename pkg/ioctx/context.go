// Package ioctx carries the process's standard streams through a context so
// that commands and renderers can be pointed at other streams in tests.
package ioctx

import (
	"context"
	"io"
)

type stdinKey struct{}
type stdoutKey struct{}
type stderrKey struct{}

func StdinFromContext(ctx context.Context) io.Reader {
	r := ctx.Value(stdinKey{})
	if r == nil {
		return eof{}
	}

	return r.(io.Reader)
}

func StdinToContext(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, stdinKey{}, r)
}

func StderrFromContext(ctx context.Context) io.Writer {
	logger := ctx.Value(stderrKey{})
	if logger == nil {
		logger = io.Discard
	}

	return logger.(io.Writer)
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

func StdoutFromContext(ctx context.Context) io.Writer {
	writer := ctx.Value(stdoutKey{})
	if writer == nil {
		writer = io.Discard
	}

	return writer.(io.Writer)
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// eof is an empty input stream.
type eof struct{}

func (eof) Read([]byte) (int, error) { return 0, io.EOF }
