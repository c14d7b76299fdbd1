package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tamirms/extsort"
	"github.com/tamirms/extsort/internal/config"
)

// runSort externally sorts a file: split into chunks beside the input, sort
// the chunks in parallel, then merge them into the output.
func runSort(args []string) int {
	fs := flag.NewFlagSet("sort", flag.ExitOnError)
	common := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: extsort sort [options] <input> <output>

Sort a file of one record per line. Chunk files <input>.part0, <input>.part1, ...
are written beside the input and removed once the merge has consumed them.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: <input> and <output> are required")
		fs.Usage()
		return ExitInvalidArgs
	}
	in, out := fs.Arg(0), fs.Arg(1)

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	log, err := newLogger(os.Stderr, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if code := checkInput(in); code != ExitSuccess {
		return code
	}

	log.Info("starting external sort",
		"input", in,
		"output", out,
		"type", cfg.Type,
		"descending", cfg.Descending,
		"chunk_size", config.FormatBytes(cfg.ChunkSize),
		"workers", cfg.Workers)

	opts := libraryOptions(cfg, log)
	var st extsort.Stats
	switch cfg.Type {
	case "int":
		st, err = extsort.Sort(in, out, extsort.Int64Codec, ordered[int64](cfg.Descending), opts...)
	case "float":
		st, err = extsort.Sort(in, out, extsort.Float64Codec, ordered[float64](cfg.Descending), opts...)
	default:
		st, err = extsort.Sort(in, out, extsort.StringCodec, stringOrder(cfg), opts...)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	fmt.Printf("Input: %s\n", in)
	fmt.Printf("Output: %s\n", out)
	fmt.Printf("Chunks: %d\n", st.Chunks)
	fmt.Printf("Records: %d\n", st.Merge.Records)
	if d := st.Dropped(); d > 0 {
		fmt.Printf("Dropped: %d unparsable lines\n", d)
	}
	fmt.Printf("Split: %s  Sort: %s  Merge: %s\n", st.SplitDuration, st.SortDuration, st.MergeDuration)
	return ExitSuccess
}
