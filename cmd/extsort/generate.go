package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tamirms/extsort/internal/config"
	"github.com/tamirms/extsort/internal/datagen"
)

// runGenerate writes a file of pseudo-random records. The same type, seed
// and count always produce the same bytes.
func runGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)

	typ := fs.String("type", "int", "Record type: int, float or string")
	count := fs.Uint64("count", 1_000_000, "Number of records")
	seed := fs.Uint("seed", 1, "Generator seed")
	output := fs.String("o", "", "Output file (required)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: extsort generate [options]

Write -count random records, one per line. Ints span [-1e9, 1e9], floats
[-1e6, 1e6], strings are 5 to 15 alphanumeric characters.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: -o is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	kind, err := datagen.ParseKind(*typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	n, err := datagen.Write(f, kind, uint32(*seed), *count)
	if err = errors.Join(err, f.Close()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Printf("Wrote %d %s records (%s) to %s\n", *count, kind, config.FormatBytes(n), *output)
	return ExitSuccess
}
