package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tamirms/extsort"
)

// runVerify checks that a file is in order and, when -input is given, that
// it holds exactly the records of the input.
func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	common := addCommonFlags(fs)
	input := fs.String("input", "", "Unsorted source file to compare records against")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: extsort verify [options] <file>

Check that <file> is sorted in the requested order. With -input, also check
that <file> holds the same multiset of records as the input.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: <file> is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	path := fs.Arg(0)

	cfg, err := common.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if code := checkInput(path); code != ExitSuccess {
		return code
	}
	if *input != "" {
		if code := checkInput(*input); code != ExitSuccess {
			return code
		}
	}

	var got, want extsort.Report
	switch cfg.Type {
	case "int":
		got, want, err = verifyPair(path, *input, extsort.Int64Codec, ordered[int64](cfg.Descending))
	case "float":
		got, want, err = verifyPair(path, *input, extsort.Float64Codec, ordered[float64](cfg.Descending))
	default:
		got, want, err = verifyPair(path, *input, extsort.StringCodec, stringOrder(cfg))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}

	fmt.Printf("File: %s\n", path)
	fmt.Printf("Records: %d\n", got.Records)
	fmt.Printf("Checksum: %016x\n", got.Checksum)
	if got.Dropped > 0 {
		fmt.Printf("Unparsable lines: %d\n", got.Dropped)
	}

	valid := got.Sorted
	if !got.Sorted {
		fmt.Printf("Order: VIOLATED at line %d\n", got.FirstUnsortedLine)
	} else {
		fmt.Println("Order: OK")
	}
	if *input != "" {
		if got.SameRecords(want) {
			fmt.Println("Content: MATCH input")
		} else {
			valid = false
			fmt.Printf("Content: MISMATCH (input has %d records, digest %016x; file has %d, digest %016x)\n",
				want.Records, want.Digest, got.Records, got.Digest)
		}
	}

	if valid {
		fmt.Println("Status: VALID")
		return ExitSuccess
	}
	fmt.Println("Status: INVALID")
	return ExitVerifyFailed
}

// verifyPair scans path with order checking and, if input is non-empty,
// scans input for its record digest only.
func verifyPair[T any](path, input string, codec extsort.Codec[T], cmp extsort.Compare[T]) (got, want extsort.Report, err error) {
	got, err = extsort.Verify(path, codec, cmp)
	if err != nil || input == "" {
		return got, want, err
	}
	want, err = extsort.Verify(input, codec, nil)
	return got, want, err
}
