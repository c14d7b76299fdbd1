package extsort

import (
	"bufio"
	"bytes"
	"errors"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"
)

// splitResult summarizes one split run.
type splitResult struct {
	chunks  int
	records int64 // numeric mode only; text mode does not parse
	dropped int64
	bytes   int64
}

// Split divides the file at path into whole-record chunk files named
// ChunkPath(path, i) beside it and returns how many were written.
//
// Text codecs (RecordSize() == 0) cut the source by bytes: every chunk holds
// at most WithChunkSize bytes and ends on a newline, except that a single
// line longer than the threshold becomes its own oversized chunk. Numeric
// codecs cut by element count (chunk size / record size), re-encoding each
// value in the codec's canonical form and dropping lines that do not parse.
//
// An empty source yields zero chunks. On failure, chunk files already
// written are left in place.
func Split[T any](path string, codec Codec[T], opts ...Option) (int, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return 0, err
	}
	res, err := split(path, codec, cfg)
	return res.chunks, err
}

func split[T any](path string, codec Codec[T], cfg *config) (splitResult, error) {
	log := cfg.logger.With("component", "split")

	var (
		res splitResult
		err error
	)
	if codec.RecordSize() == 0 {
		res, err = splitBytes(path, cfg.chunkSize, log)
	} else {
		perChunk := max(cfg.chunkSize/int64(codec.RecordSize()), 1)
		res, err = splitRecords(path, codec, perChunk, cfg, log)
	}
	if err != nil {
		return res, err
	}

	log.Info("split complete", "source", path, "chunks", res.chunks, "bytes", res.bytes, "dropped", res.dropped)
	return res, nil
}

// splitBytes maps the source read-only and copies newline-aligned windows of
// at most limit bytes into chunk files.
func splitBytes(path string, limit int64, log *slog.Logger) (splitResult, error) {
	var res splitResult

	f, err := os.Open(path)
	if err != nil {
		return res, ioError("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return res, ioError("stat", path, err)
	}
	if info.Size() == 0 {
		return res, nil
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return res, ioError("mmap", path, err)
	}
	defer func() { _ = mm.Unmap() }()

	data := []byte(mm)
	madviseSequential(data)

	for start := 0; start < len(data); {
		cut := chunkEnd(data, start, limit)
		h := newChunkHandle(path, res.chunks)

		n, err := writeTextChunk(h.path, data[start:cut])
		if err != nil {
			return res, err
		}
		log.Info("chunk created", "chunk", h.path, "bytes", n)

		res.chunks++
		res.bytes += n
		start = cut
	}
	return res, nil
}

// chunkEnd returns the exclusive end of the chunk starting at start.
func chunkEnd(data []byte, start int, limit int64) int {
	if int64(len(data)-start) <= limit {
		return len(data)
	}
	end := start + int(limit)
	if i := bytes.LastIndexByte(data[start:end], '\n'); i >= 0 {
		return start + i + 1
	}
	// A single record longer than the threshold: keep it whole.
	if i := bytes.IndexByte(data[end:], '\n'); i >= 0 {
		return end + i + 1
	}
	return len(data)
}

// writeTextChunk writes body to path, appending a newline if the body does
// not already end with one, and returns the number of bytes written.
func writeTextChunk(path string, body []byte) (int64, error) {
	size := int64(len(body))
	needsNewline := body[len(body)-1] != '\n'
	if needsNewline {
		size++
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, ioError("create", path, err)
	}
	if err := fallocateFile(f, size); err != nil {
		return 0, errors.Join(ioError("allocate", path, err), f.Close())
	}
	if _, err := f.Write(body); err != nil {
		return 0, errors.Join(ioError("write", path, err), f.Close())
	}
	if needsNewline {
		if _, err := f.Write([]byte{'\n'}); err != nil {
			return 0, errors.Join(ioError("write", path, err), f.Close())
		}
	}
	if err := f.Close(); err != nil {
		return 0, ioError("close", path, err)
	}
	return size, nil
}

// splitRecords streams the source and writes perChunk parsed values per
// chunk file.
func splitRecords[T any](path string, codec Codec[T], perChunk int64, cfg *config, log *slog.Logger) (splitResult, error) {
	var res splitResult

	f, err := os.Open(path)
	if err != nil {
		return res, ioError("open", path, err)
	}
	defer f.Close()

	w := &recordChunkWriter{base: path}
	sc := newLineScanner(f, writeBufferSize)
	var buf []byte
	for {
		line, ok := sc.next()
		if !ok {
			break
		}
		v, err := codec.Parse(line)
		if err != nil {
			perr := parseError(path, sc.line, err)
			if cfg.strictParse {
				return res, errors.Join(perr, w.close())
			}
			log.Warn("dropping unparsable record", "error", perr)
			res.dropped++
			continue
		}

		if w.count == perChunk {
			n, err := w.finish()
			if err != nil {
				return res, err
			}
			log.Info("chunk created", "chunk", ChunkPath(path, w.next-1), "records", n)
		}
		if w.file == nil {
			if err := w.open(); err != nil {
				return res, err
			}
		}

		buf = codec.Append(buf[:0], v)
		buf = append(buf, '\n')
		if err := w.write(buf); err != nil {
			return res, errors.Join(err, w.close())
		}
		res.records++
		res.bytes += int64(len(buf))
	}
	if err := sc.err(); err != nil {
		return res, errors.Join(ioError("read", path, err), w.close())
	}

	if w.file != nil {
		n, err := w.finish()
		if err != nil {
			return res, err
		}
		log.Info("chunk created", "chunk", ChunkPath(path, w.next-1), "records", n)
	}
	res.chunks = w.next
	return res, nil
}

// recordChunkWriter owns the chunk file currently being filled.
type recordChunkWriter struct {
	base  string
	next  int // ordinal of the next chunk to open
	path  string
	file  *os.File
	w     *bufio.Writer
	count int64
}

func (r *recordChunkWriter) open() error {
	r.path = ChunkPath(r.base, r.next)
	f, err := os.Create(r.path)
	if err != nil {
		return ioError("create", r.path, err)
	}
	r.file = f
	r.w = bufio.NewWriterSize(f, writeBufferSize)
	r.count = 0
	r.next++
	return nil
}

func (r *recordChunkWriter) write(line []byte) error {
	if _, err := r.w.Write(line); err != nil {
		return ioError("write", r.path, err)
	}
	r.count++
	return nil
}

// finish flushes and closes the current chunk, returning its record count.
func (r *recordChunkWriter) finish() (int64, error) {
	n := r.count
	if err := r.w.Flush(); err != nil {
		return 0, errors.Join(ioError("write", r.path, err), r.close())
	}
	if err := r.close(); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *recordChunkWriter) close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.w = nil
	if err != nil {
		return ioError("close", r.path, err)
	}
	return nil
}
