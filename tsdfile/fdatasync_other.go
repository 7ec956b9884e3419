//go:build !linux

package tsdfile

import "os"

func fdatasync(f *os.File) error {
	return f.Sync()
}
