package tsdb

import (
	"errors"
	"fmt"
)

// Decode error kinds. Every *FormatError unwraps to exactly one of these.
var (
	ErrBadHeader       = errors.New("bad header")
	ErrTagMismatch     = errors.New("container tag mismatch")
	ErrTruncated       = errors.New("truncated buffer")
	ErrUnsupportedType = errors.New("unsupported type")
	ErrSizeMismatch    = errors.New("size mismatch")
)

// Encode error kinds.
var (
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrStringTooLong  = errors.New("string too long")
)

// FormatError describes a decoding failure at a particular offset of Data.
// Decoding stops at the first FormatError; the stream position is presumed
// corrupt from Off onwards.
type FormatError struct {
	Data []byte
	Off  int
	Kind error

	// Tag and Expected are set for ErrTagMismatch and ErrUnsupportedType.
	Tag      byte
	Expected byte

	Msg string
}

func formatErrf(data []byte, off int, kind error, format string, args ...any) error {
	return &FormatError{Data: data, Off: off, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func tagErr(data []byte, off int, tag, expected ContainerTag) error {
	return &FormatError{
		Data:     data,
		Off:      off,
		Kind:     ErrTagMismatch,
		Tag:      byte(tag),
		Expected: byte(expected),
		Msg:      fmt.Sprintf("expected %v, got container tag %d", expected, tag),
	}
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}

func (e *FormatError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		return fmt.Sprintf("tsdb: %v at offset %d: %s: (%d) %x", e.Kind, e.Off, e.Msg, n, e.Data)
	}
	p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
	return fmt.Sprintf("tsdb: %v at offset %d: %s: (%d) %x...%x", e.Kind, e.Off, e.Msg, n, p, s)
}

// BufferError is returned by the Write* primitives when dest cannot hold the
// value being written. Nothing is written in that case.
type BufferError struct {
	Off  int
	Need int
	Len  int
}

func (e *BufferError) Unwrap() error {
	return ErrBufferTooSmall
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("tsdb: buffer too small: need %d bytes at offset %d, buffer is %d bytes", e.Need, e.Off, e.Len)
}
