package extsort

import (
	"log/slog"
	"runtime"

	exterrors "github.com/tamirms/extsort/errors"
)

const (
	// DefaultChunkSize is the per-chunk byte threshold (100 MiB).
	DefaultChunkSize = 100 << 20

	// DefaultMaxWorkers caps the sort pool regardless of CPU count.
	DefaultMaxWorkers = 11

	// DefaultProgressInterval is how many merged records pass between
	// progress log lines.
	DefaultProgressInterval = 1_000_000
)

// Option is a functional option for configuring split, sort and merge.
type Option func(*config)

type config struct {
	chunkSize        int64
	maxWorkers       int
	logger           *slog.Logger
	strictParse      bool
	progressInterval int64
}

func defaultConfig() *config {
	return &config{
		chunkSize:        DefaultChunkSize,
		maxWorkers:       DefaultMaxWorkers,
		logger:           slog.New(slog.DiscardHandler),
		progressInterval: DefaultProgressInterval,
	}
}

func newConfig(opts []Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.chunkSize <= 0 {
		return nil, exterrors.ErrInvalidChunkSize
	}
	if cfg.maxWorkers <= 0 {
		return nil, exterrors.ErrInvalidWorkers
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.progressInterval <= 0 {
		cfg.progressInterval = DefaultProgressInterval
	}
	return cfg, nil
}

// workers returns min(available parallelism, configured cap).
func (c *config) workers() int {
	return min(runtime.NumCPU(), c.maxWorkers)
}

// WithChunkSize sets the chunk threshold in bytes. Numeric codecs divide it
// by their record size to get an element count.
func WithChunkSize(bytes int64) Option {
	return func(c *config) {
		c.chunkSize = bytes
	}
}

// WithWorkers caps the number of concurrent chunk sorts. The pool never
// exceeds runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(c *config) {
		c.maxWorkers = n
	}
}

// WithLogger sets the structured logger for progress and diagnostics.
// By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithStrictParse makes an unparsable line fatal instead of dropping the
// record. In SortAll the chunk containing it is reported as failed; in Split
// and Merge the whole run fails.
func WithStrictParse() Option {
	return func(c *config) {
		c.strictParse = true
	}
}

// WithProgressInterval sets how many merged records pass between progress
// log lines.
func WithProgressInterval(n int64) Option {
	return func(c *config) {
		c.progressInterval = n
	}
}
