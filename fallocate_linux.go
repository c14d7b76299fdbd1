//go:build linux

package extsort

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile reserves size bytes for a chunk file so that a full disk is
// reported when the chunk is created rather than halfway through writing it.
func fallocateFile(file *os.File, size int64) error {
	if size <= 0 {
		return nil
	}
	err := unix.Fallocate(int(file.Fd()), 0, 0, size)
	if err != nil {
		// Fallback to ftruncate if fallocate fails (e.g., NFS, some filesystems)
		return unix.Ftruncate(int(file.Fd()), size)
	}
	return nil
}
