// Package extsort implements an external (disk-based) merge sort for
// line-delimited record files that do not fit in memory: signed integers,
// floating point values or raw text lines.
//
// A sort runs in three phases:
//
//  1. Split cuts the input into bounded, whole-record chunk files named
//     "<input>.part<i>" beside the input.
//  2. SortAll sorts every chunk on a bounded worker pool. Each task loads its
//     chunk, applies a stable merge sort and rewrites the file in place.
//  3. Merge streams all sorted chunks through a k-way heap into one output
//     and deletes each chunk file as soon as it is exhausted.
//
// # Basic Usage
//
// Sorting a file of integers in descending order:
//
//	stats, err := extsort.Sort("ints.txt", "ints.sorted",
//	    extsort.Int64Codec, extsort.Descending[int64](),
//	    extsort.WithChunkSize(64<<20), extsort.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d records\n", stats.Merge.Records)
//
// The phases can also be driven separately:
//
//	n, err := extsort.Split("words.txt", extsort.StringCodec)
//	...
//	err = extsort.SortAll("words.txt", n, extsort.StringCodec, extsort.Ascending[string]())
//	...
//	_, err = extsort.Merge("words.txt", n, "words.sorted", extsort.StringCodec, extsort.Ascending[string]())
//
// # Records
//
// A record is one line. Empty lines are not records and are skipped in
// every phase. Numeric records that fail to parse are dropped with a warning
// and counted (see Stats.Dropped); WithStrictParse turns any such line into
// a fatal error instead. Float64Codec writes the shortest fixed-notation form
// that parses back to the same value, so chunk rewrites never lose precision.
//
// # Ordering
//
// The Compare passed to SortAll and Merge must be the same total order.
// Records that compare equal keep their input order within one chunk; across
// chunks, ties are emitted in chunk order.
//
// # Package Structure
//
//   - Public API: extsort.go (Sort), split.go (Split), sort_chunks.go
//     (SortAll), merge.go (Merge), verify.go (Verify)
//   - Records: record.go (Codec, Compare, built-in codecs)
//   - Configuration: options.go (Option, With* functions)
//   - Helpers: chunk.go (naming, line scanning, atomic rewrite),
//     merge_heap.go (chunk-head heap)
//   - Internal: internal/workerpool, internal/mergesort
//   - Platform: fadvise_*.go, fallocate_*.go (OS-specific hints)
package extsort
