//go:build !unix

package tsdfile

import (
	"io"
	"os"
)

const mmapSupported = false

func mapFile(f *os.File, size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(f, b); err != nil {
		return nil, err
	}
	return b, nil
}

func unmapFile(b []byte) error {
	return nil
}
