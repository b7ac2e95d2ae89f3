// Package membuf adapts caller-supplied byte sequences to the view the
// native provider expects, and copies provider output back into host-owned
// slices. A Reader is only a borrowed view: it never takes ownership of the
// underlying bytes and is valid for the duration of a single provider call.
package membuf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidArgument is returned when a value does not satisfy the
// read-buffer contract. It is reported before any provider call is made.
var ErrInvalidArgument = errors.New("membuf: invalid argument")

// Reader exposes a byte sequence as a read-only view.
type Reader struct {
	data []byte
}

// NewReader wraps v in a read-only view. Accepted types are []byte, string,
// *bytes.Buffer and io.Reader. Any other type fails with ErrInvalidArgument.
func NewReader(v any) (*Reader, error) {
	switch b := v.(type) {
	case []byte:
		return &Reader{data: b}, nil
	case string:
		return &Reader{data: []byte(b)}, nil
	case *bytes.Buffer:
		if b == nil {
			return nil, fmt.Errorf("%w: nil buffer", ErrInvalidArgument)
		}
		return &Reader{data: b.Bytes()}, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, fmt.Errorf("%w: read: %v", ErrInvalidArgument, err)
		}
		return &Reader{data: data}, nil
	case nil:
		return nil, fmt.Errorf("%w: nil value", ErrInvalidArgument)
	default:
		return nil, fmt.Errorf("%w: type %T does not support the read-buffer protocol", ErrInvalidArgument, v)
	}
}

// Bytes returns the borrowed view of the underlying sequence.
// The caller must not retain it past the provider call it was created for.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Len returns the length of the view.
func (r *Reader) Len() int {
	return len(r.data)
}

// Writer collects provider output. Bytes returns a host-owned copy so the
// provider side can be released independently.
type Writer struct {
	buf bytes.Buffer
}

// Write appends provider output.
func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Bytes returns a freshly allocated copy of everything written.
func (w *Writer) Bytes() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	return out
}
