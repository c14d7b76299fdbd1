// Extsort sorts text files of integers, floats or strings that do not fit in
// memory.
//
// Usage:
//
//	extsort sort -type int -chunk-size 64MB input.txt output.txt
//	extsort verify -type int -input input.txt output.txt
//	extsort generate -type string -count 1000000 -o input.txt
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/tamirms/extsort"
	exterrors "github.com/tamirms/extsort/errors"
	"github.com/tamirms/extsort/internal/config"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitInputMissing = 3
	ExitVerifyFailed = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "sort":
		return runSort(cmdArgs)
	case "memsort":
		return runMemSort(cmdArgs)
	case "verify":
		return runVerify(cmdArgs)
	case "generate":
		return runGenerate(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: extsort <command> [options]

Commands:
  sort      Sort a file by splitting, sorting chunks in parallel and merging
  memsort   Sort a small file entirely in memory
  verify    Check that a file is sorted and optionally holds the same records as another
  generate  Write a deterministic file of random records

Run 'extsort <command> -h' for command-specific help.`)
}

// commonFlags are the record and logging flags shared by all sorting
// commands. Unset flags leave the file and environment configuration alone.
type commonFlags struct {
	configPath *string
	typ        *string
	desc       *bool
	ignoreCase *bool
	chunkSize  *string
	workers    *int
	strict     *bool
	logLevel   *string
	logFormat  *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", "", "YAML config file"),
		typ:        fs.String("type", "", "Record type: int, float or string (default string)"),
		desc:       fs.Bool("desc", false, "Sort in descending order"),
		ignoreCase: fs.Bool("ignore-case", false, "Compare strings case-insensitively"),
		chunkSize:  fs.String("chunk-size", "", "Chunk threshold, e.g. 64MB (default 100MB)"),
		workers:    fs.Int("workers", 0, "Maximum parallel chunk sorts (default 11, capped at CPU count)"),
		strict:     fs.Bool("strict", false, "Fail on unparsable lines instead of dropping them"),
		logLevel:   fs.String("log-level", "", "Log level: debug, info, warn, error"),
		logFormat:  fs.String("log-format", "", "Log format: text or json"),
	}
}

// load resolves defaults, then the config file, then EXTSORT_* variables,
// then flags.
func (f *commonFlags) load() (config.Config, error) {
	cfg := config.Default()
	if *f.configPath != "" {
		var err error
		cfg, err = config.LoadFromFile(*f.configPath)
		if err != nil {
			return cfg, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}

	override := config.Config{
		Type:       *f.typ,
		Descending: *f.desc,
		IgnoreCase: *f.ignoreCase,
		Workers:    *f.workers,
		Strict:     *f.strict,
		Log: config.LogConfig{
			Level:  *f.logLevel,
			Format: *f.logFormat,
		},
	}
	if *f.chunkSize != "" {
		size, err := config.ParseBytes(*f.chunkSize)
		if err != nil {
			return cfg, fmt.Errorf("parse -chunk-size: %w", err)
		}
		override.ChunkSize = size
	}
	cfg = cfg.Merge(override)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the diagnostic logger. Every line carries the run id so
// that concurrent runs sharing a log sink can be told apart.
func newLogger(w io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
	}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch lc.Format {
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		h = slog.NewTextHandler(w, hopts)
	}
	return slog.New(h).With("run_id", uuid.NewString()), nil
}

// libraryOptions translates the CLI configuration into extsort options.
func libraryOptions(cfg config.Config, log *slog.Logger) []extsort.Option {
	opts := []extsort.Option{
		extsort.WithChunkSize(cfg.ChunkSize),
		extsort.WithWorkers(cfg.Workers),
		extsort.WithLogger(log),
		extsort.WithProgressInterval(cfg.ProgressInterval),
	}
	if cfg.Strict {
		opts = append(opts, extsort.WithStrictParse())
	}
	return opts
}

func ordered[T int64 | float64](desc bool) extsort.Compare[T] {
	if desc {
		return extsort.Descending[T]()
	}
	return extsort.Ascending[T]()
}

func stringOrder(cfg config.Config) extsort.Compare[string] {
	cmp := extsort.Ascending[string]()
	if cfg.IgnoreCase {
		cmp = extsort.StringCompareFold
	}
	if cfg.Descending {
		cmp = cmp.Reverse()
	}
	return cmp
}

// exitCode maps a library or configuration error to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, exterrors.ErrInvalidChunkSize),
		errors.Is(err, exterrors.ErrInvalidChunkCount),
		errors.Is(err, exterrors.ErrInvalidWorkers):
		return ExitInvalidArgs
	case errors.Is(err, exterrors.ErrMissingChunk):
		return ExitGeneralError
	case errors.Is(err, fs.ErrNotExist):
		return ExitInputMissing
	default:
		return ExitGeneralError
	}
}

// checkInput reports a missing input with ExitInputMissing before any work
// starts.
func checkInput(path string) int {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot access input: %v\n", err)
		if errors.Is(err, fs.ErrNotExist) {
			return ExitInputMissing
		}
		return ExitGeneralError
	}
	return ExitSuccess
}
