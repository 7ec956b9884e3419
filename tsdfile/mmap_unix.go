//go:build unix

package tsdfile

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

const mmapSupported = true

// mapFile maps the first size bytes of f read-only, hinting the kernel that
// the mapping is about to be read front to back.
func mapFile(f *os.File, size int) ([]byte, error) {
	b, err := unix.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	err = unix.Madvise(b, syscall.MADV_SEQUENTIAL)
	if err != nil && err != syscall.ENOSYS {
		// ENOSYS is fine: the mapping still works without the hint.
		_ = unix.Munmap(b)
		return nil, fmt.Errorf("madvise(MADV_SEQUENTIAL): %w", err)
	}
	return b, nil
}

func unmapFile(b []byte) error {
	return unix.Munmap(b)
}
