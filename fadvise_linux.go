//go:build linux

package extsort

import "golang.org/x/sys/unix"

// fadviseSequential hints that a chunk file will be streamed front to back
// by the merge. Best-effort: errors are ignored.
func fadviseSequential(fd int) {
	_ = unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL)
}

// madviseSequential hints that a mapped source will be scanned once in
// order by the splitter. Best-effort: errors are ignored.
func madviseSequential(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
}
