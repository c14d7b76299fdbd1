package extsort

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	exterrors "github.com/tamirms/extsort/errors"
)

// readBufferSize is the per-chunk read buffer used while merging.
const readBufferSize = 64 << 10

// MergeStats summarizes a completed merge.
type MergeStats struct {
	Chunks  int   // chunk files consumed
	Records int64 // records written to the output
	Dropped int64 // unparsable lines skipped
}

// chunkReader is the merge's cursor over one sorted chunk.
type chunkReader struct {
	chunkHandle
	file *os.File
	sc   *lineScanner
}

// mergeState owns every open chunk handle and the output for one merge.
type mergeState[T any] struct {
	cfg     *config
	log     *slog.Logger
	codec   Codec[T]
	readers []*chunkReader
	out     *atomicFile
	stats   MergeStats
}

// Merge streams the sorted chunks 0..n-1 of base into out in the order given
// by cmp, deleting each chunk file as soon as its last record is written.
//
// Every declared chunk must be present: if any chunk fails to open the merge
// fails before an output is created. The output is written to a temporary
// file beside out and renamed into place only after the last record, so a
// failed merge never leaves a partial out. Unparsable lines are dropped and
// counted unless WithStrictParse is set, in which case they abort the merge.
//
// Merging n == 0 chunks produces an empty output.
func Merge[T any](base string, n int, out string, codec Codec[T], cmp Compare[T], opts ...Option) (MergeStats, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return MergeStats{}, err
	}
	return merge(base, n, out, codec, cmp, cfg)
}

func merge[T any](base string, n int, out string, codec Codec[T], cmp Compare[T], cfg *config) (MergeStats, error) {
	if n < 0 {
		return MergeStats{}, exterrors.ErrInvalidChunkCount
	}
	m := &mergeState[T]{
		cfg:   cfg,
		log:   cfg.logger.With("component", "merge"),
		codec: codec,
	}
	start := time.Now()

	if err := m.openAll(base, n); err != nil {
		return m.stats, err
	}

	af, err := createAtomic(out)
	if err != nil {
		return m.stats, errors.Join(err, m.closeAll())
	}
	m.out = af

	if err := m.run(cmp); err != nil {
		return m.stats, errors.Join(err, m.out.abort(), m.closeAll())
	}
	if err := m.out.commit(); err != nil {
		return m.stats, errors.Join(err, m.closeAll())
	}

	m.log.Info("merge complete",
		"output", out,
		"records", m.stats.Records,
		"dropped", m.stats.Dropped,
		"chunks", m.stats.Chunks,
		"elapsed", time.Since(start))
	return m.stats, nil
}

// openAll opens every chunk. A missing or unreadable chunk is fatal.
func (m *mergeState[T]) openAll(base string, n int) error {
	m.readers = make([]*chunkReader, 0, n)
	for i := range n {
		h := newChunkHandle(base, i)
		f, err := os.Open(h.path)
		if err != nil {
			err = ioError("open", h.path, err)
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("%w: %w", exterrors.ErrMissingChunk, err)
			}
			m.log.Error("cannot open chunk", "chunk", h.path, "error", err)
			return errors.Join(err, m.closeAll())
		}
		fadviseSequential(int(f.Fd()))
		m.readers = append(m.readers, &chunkReader{
			chunkHandle: h,
			file:        f,
			sc:          newLineScanner(f, readBufferSize),
		})
	}
	return nil
}

// run drains the heap into the output.
func (m *mergeState[T]) run(cmp Compare[T]) error {
	heap := newHeadHeap(len(m.readers), cmp)
	for _, r := range m.readers {
		v, ok, err := m.next(r)
		if err != nil {
			return err
		}
		if !ok {
			if err := m.retire(r); err != nil {
				return err
			}
			continue
		}
		heap.push(headEntry[T]{value: v, chunk: r.ordinal})
	}

	var buf []byte
	for heap.len() > 0 {
		top := heap.entries[0]

		buf = m.codec.Append(buf[:0], top.value)
		buf = append(buf, '\n')
		if _, err := m.out.Write(buf); err != nil {
			return ioError("write", m.out.dest, err)
		}
		m.stats.Records++
		if m.stats.Records%m.cfg.progressInterval == 0 {
			m.log.Info("merge progress", "records", m.stats.Records, "live_chunks", heap.len())
		}

		r := m.readers[top.chunk]
		v, ok, err := m.next(r)
		if err != nil {
			return err
		}
		if ok {
			heap.replaceTop(headEntry[T]{value: v, chunk: top.chunk})
			continue
		}
		heap.pop()
		if err := m.retire(r); err != nil {
			return err
		}
	}
	return nil
}

// next returns the following parsable record of r. ok is false once r is
// exhausted.
func (m *mergeState[T]) next(r *chunkReader) (T, bool, error) {
	var zero T
	for {
		line, more := r.sc.next()
		if !more {
			if err := r.sc.err(); err != nil {
				return zero, false, ioError("read", r.path, err)
			}
			return zero, false, nil
		}
		v, err := m.codec.Parse(line)
		if err == nil {
			return v, true, nil
		}
		perr := parseError(r.path, r.sc.line, err)
		if m.cfg.strictParse {
			return zero, false, perr
		}
		m.log.Warn("dropping unparsable record", "error", perr)
		m.stats.Dropped++
	}
}

// retire closes and deletes an exhausted chunk.
func (m *mergeState[T]) retire(r *chunkReader) error {
	if err := r.file.Close(); err != nil {
		return ioError("close", r.path, err)
	}
	r.file = nil
	if err := os.Remove(r.path); err != nil {
		return ioError("remove", r.path, err)
	}
	m.stats.Chunks++
	m.log.Debug("chunk consumed", "chunk", r.path)
	return nil
}

// closeAll closes every handle still open. Chunk files are kept.
func (m *mergeState[T]) closeAll() error {
	var errs []error
	for _, r := range m.readers {
		if r.file == nil {
			continue
		}
		if err := r.file.Close(); err != nil {
			errs = append(errs, ioError("close", r.path, err))
		}
		r.file = nil
	}
	return errors.Join(errs...)
}
