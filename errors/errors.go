// Package errors defines all exported error sentinels for the extsort library.
//
// This is the single source of truth for error values. The top-level extsort
// package and the internal packages import from here, so errors.Is checks
// work across package boundaries.
package errors

import "errors"

// I/O and parse errors
var (
	// ErrIO wraps every open/read/write/create/rename failure. The wrapping
	// error names the path and keeps the underlying *fs.PathError reachable.
	ErrIO = errors.New("extsort: i/o error")

	// ErrParse is returned when a line does not parse as the declared record
	// type. Outside strict mode it is only logged and the record is dropped.
	ErrParse = errors.New("extsort: record parse error")
)

// Pipeline errors
var (
	ErrPoolClosed   = errors.New("extsort: enqueue on closed worker pool")
	ErrMissingChunk = errors.New("extsort: declared chunk file is missing")
	ErrChunkSort    = errors.New("extsort: chunk sort failed")
)

// Configuration errors
var (
	ErrInvalidChunkSize  = errors.New("extsort: chunk size must be positive")
	ErrInvalidChunkCount = errors.New("extsort: chunk count must not be negative")
	ErrInvalidWorkers    = errors.New("extsort: worker count must be positive")
)
