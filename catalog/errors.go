package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidName      = errors.New("invalid name")
)

// EntryError is returned by Catalog operations on a particular entry.
type EntryError struct {
	Name string
	Msg  string
	Err  error
}

func entryErrf(name string, err error, format string, args ...any) error {
	return &EntryError{name, fmt.Sprintf(format, args...), err}
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

func (e *EntryError) Error() string {
	var buf strings.Builder
	buf.WriteString("catalog: ")
	buf.WriteString(fmt.Sprintf("%q", e.Name))
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
