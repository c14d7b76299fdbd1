package extsort

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	exterrors "github.com/tamirms/extsort/errors"
	"github.com/tamirms/extsort/internal/mergesort"
	"github.com/tamirms/extsort/internal/workerpool"
)

// sortResult summarizes one SortAll run.
type sortResult struct {
	completed int64
	records   int64
	dropped   int64
}

// chunkErrors collects per-chunk failures reported by pool tasks.
type chunkErrors struct {
	mu   sync.Mutex
	errs []error
}

func (c *chunkErrors) add(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

func (c *chunkErrors) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.errs...)
}

// SortAll sorts chunks 0..n-1 of base in parallel, rewriting each chunk file
// in place with one record per line. It returns once every chunk task has
// finished.
//
// A chunk that cannot be read or rewritten is left as it was and reported;
// the remaining chunks are still sorted. The returned error joins every
// per-chunk failure, each wrapping ErrChunkSort.
func SortAll[T any](base string, n int, codec Codec[T], cmp Compare[T], opts ...Option) error {
	cfg, err := newConfig(opts)
	if err != nil {
		return err
	}
	_, err = sortAll(base, n, codec, cmp, cfg)
	return err
}

func sortAll[T any](base string, n int, codec Codec[T], cmp Compare[T], cfg *config) (sortResult, error) {
	var res sortResult
	if n < 0 {
		return res, exterrors.ErrInvalidChunkCount
	}
	log := cfg.logger.With("component", "sort")

	pool := workerpool.New(cfg.workers())
	defer pool.Shutdown()

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		records   atomic.Int64
		dropped   atomic.Int64
		failures  chunkErrors
	)
	start := time.Now()

	for i := range n {
		h := newChunkHandle(base, i)
		wg.Add(1)
		err := pool.Enqueue(func() {
			defer wg.Done()
			defer completed.Add(1)

			st, err := sortChunk(h, codec, cmp, cfg, log)
			records.Add(st.records)
			dropped.Add(st.dropped)
			if err != nil {
				log.Error("chunk sort abandoned", "chunk", h.path, "error", err)
				failures.add(fmt.Errorf("%w: chunk %d: %w", exterrors.ErrChunkSort, h.ordinal, err))
			}
		})
		if err != nil {
			wg.Done()
			failures.add(fmt.Errorf("%w: chunk %d: %w", exterrors.ErrChunkSort, h.ordinal, err))
		}
	}
	wg.Wait()

	res = sortResult{completed: completed.Load(), records: records.Load(), dropped: dropped.Load()}
	log.Info("all chunks sorted",
		"chunks", res.completed,
		"records", res.records,
		"dropped", res.dropped,
		"workers", pool.Workers(),
		"elapsed", time.Since(start))
	return res, failures.err()
}

// chunkStats counts what one chunk task kept and dropped.
type chunkStats struct {
	records int64
	dropped int64
}

// sortChunk loads one chunk fully, sorts it stably and rewrites it.
func sortChunk[T any](h chunkHandle, codec Codec[T], cmp Compare[T], cfg *config, log *slog.Logger) (chunkStats, error) {
	var st chunkStats

	data, err := os.ReadFile(h.path)
	if err != nil {
		return st, ioError("read", h.path, err)
	}

	var values []T
	if rs := codec.RecordSize(); rs > 0 {
		values = make([]T, 0, len(data)/rs)
	}
	err = splitLines(data, func(line []byte, lineNo int) error {
		v, err := codec.Parse(line)
		if err != nil {
			perr := parseError(h.path, lineNo, err)
			if cfg.strictParse {
				return perr
			}
			log.Warn("dropping unparsable record", "error", perr)
			st.dropped++
			return nil
		}
		values = append(values, v)
		return nil
	})
	if err != nil {
		return st, err
	}
	data = nil
	log.Debug("chunk loaded", "chunk", h.path, "records", len(values))

	values = mergesort.Sort(values, cmp)

	if err := writeChunk(h.path, codec, values); err != nil {
		return st, err
	}
	st.records = int64(len(values))
	log.Debug("chunk sorted", "chunk", h.path, "records", st.records)
	return st, nil
}

// writeChunk replaces the file at path with values, one per line.
func writeChunk[T any](path string, codec Codec[T], values []T) error {
	af, err := createAtomic(path)
	if err != nil {
		return err
	}
	var buf []byte
	for _, v := range values {
		buf = codec.Append(buf[:0], v)
		buf = append(buf, '\n')
		if _, err := af.Write(buf); err != nil {
			return errors.Join(ioError("write", path, err), af.abort())
		}
	}
	return af.commit()
}
