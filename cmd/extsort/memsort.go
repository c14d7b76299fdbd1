package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/tamirms/extsort"
)

// runMemSort sorts a file entirely in memory. It is the baseline the
// external sort is checked against and is adequate for inputs that fit in
// RAM several times over.
func runMemSort(args []string) int {
	fs := flag.NewFlagSet("memsort", flag.ExitOnError)
	common := addCommonFlags(fs)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: extsort memsort [options] <input> <output>

Read every record into memory, sort stably and write the result.
-chunk-size and -workers are accepted but have no effect.

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
	if code := checkInput(in); code != ExitSuccess {
		return code
	}

	var n, dropped int
	switch cfg.Type {
	case "int":
		n, dropped, err = memSort(in, out, extsort.Int64Codec, ordered[int64](cfg.Descending), cfg.Strict)
	case "float":
		n, dropped, err = memSort(in, out, extsort.Float64Codec, ordered[float64](cfg.Descending), cfg.Strict)
	default:
		n, dropped, err = memSort(in, out, extsort.StringCodec, stringOrder(cfg), cfg.Strict)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	fmt.Printf("Records: %d\n", n)
	if dropped > 0 {
		fmt.Printf("Dropped: %d unparsable lines\n", dropped)
	}
	return ExitSuccess
}

func memSort[T any](in, out string, codec extsort.Codec[T], cmp extsort.Compare[T], strict bool) (records, dropped int, err error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return 0, 0, err
	}

	var values []T
	lineNo := 0
	for line := range bytes.Lines(data) {
		lineNo++
		line = bytes.TrimSuffix(line, []byte{'\n'})
		if len(line) == 0 {
			continue
		}
		v, err := codec.Parse(line)
		if err != nil {
			if strict {
				return 0, 0, fmt.Errorf("%s:%d: %w", in, lineNo, err)
			}
			dropped++
			continue
		}
		values = append(values, v)
	}
	data = nil

	slices.SortStableFunc(values, cmp)

	dst, err := os.Create(out)
	if err != nil {
		return 0, 0, err
	}
	w := bufio.NewWriterSize(dst, 256<<10)
	var buf []byte
	for _, v := range values {
		buf = codec.Append(buf[:0], v)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return 0, 0, errors.Join(err, dst.Close())
		}
	}
	if err := w.Flush(); err != nil {
		return 0, 0, errors.Join(err, dst.Close())
	}
	if err := dst.Close(); err != nil {
		return 0, 0, err
	}
	return len(values), dropped, nil
}
