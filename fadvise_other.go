//go:build !linux

package extsort

// fadviseSequential is a no-op on non-Linux platforms.
func fadviseSequential(fd int) {}

// madviseSequential is a no-op on non-Linux platforms.
func madviseSequential(data []byte) {}
