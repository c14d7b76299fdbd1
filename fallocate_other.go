//go:build !linux && !darwin

package extsort

import "os"

// fallocateFile sets the file size up front. It may not reserve actual disk
// blocks on all filesystems.
func fallocateFile(file *os.File, size int64) error {
	if size <= 0 {
		return nil
	}
	return file.Truncate(size)
}
