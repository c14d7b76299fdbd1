package extsort

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	exterrors "github.com/tamirms/extsort/errors"
)

// chunkSuffix separates the base name from the chunk ordinal.
const chunkSuffix = ".part"

// ChunkPath returns the path of chunk i for the given base name.
func ChunkPath(base string, i int) string {
	return base + chunkSuffix + strconv.Itoa(i)
}

// chunkHandle identifies one chunk by ordinal. The merge phase attaches the
// open file; everywhere else it is passed around by value.
type chunkHandle struct {
	ordinal int
	path    string
}

func newChunkHandle(base string, i int) chunkHandle {
	return chunkHandle{ordinal: i, path: ChunkPath(base, i)}
}

// ioError wraps a filesystem failure so that both ErrIO and the underlying
// cause (e.g. fs.ErrNotExist) satisfy errors.Is.
func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", exterrors.ErrIO, op, path, err)
}

// parseError describes one line that failed to parse.
func parseError(path string, line int, err error) error {
	return fmt.Errorf("%w: %s:%d: %w", exterrors.ErrParse, path, line, err)
}

// lineScanner yields non-empty lines of r together with their 1-based line
// numbers. Lines have no length limit: a line longer than the read buffer is
// assembled in an owned buffer. A trailing '\r' is kept, matching splitLines.
type lineScanner struct {
	r    *bufio.Reader
	long []byte // assembles lines that span several buffer fills
	line int
	done bool
	rerr error
}

func newLineScanner(r io.Reader, bufSize int) *lineScanner {
	return &lineScanner{r: bufio.NewReaderSize(r, bufSize)}
}

// next returns the next non-empty line. The returned slice is only valid
// until the following call. ok is false at EOF or on error.
func (s *lineScanner) next() (line []byte, ok bool) {
	for !s.done {
		b, err := s.readLine()
		if err != nil {
			s.done = true
			if !errors.Is(err, io.EOF) {
				s.rerr = err
				return nil, false
			}
			if len(b) == 0 {
				return nil, false
			}
			// Final line without a newline.
		}
		s.line++
		b = bytes.TrimSuffix(b, []byte{'\n'})
		if len(b) == 0 {
			continue
		}
		return b, true
	}
	return nil, false
}

// readLine returns one raw line including its newline, if any.
func (s *lineScanner) readLine() ([]byte, error) {
	frag, err := s.r.ReadSlice('\n')
	if !errors.Is(err, bufio.ErrBufferFull) {
		return frag, err
	}
	s.long = append(s.long[:0], frag...)
	for {
		frag, err = s.r.ReadSlice('\n')
		s.long = append(s.long, frag...)
		if !errors.Is(err, bufio.ErrBufferFull) {
			return s.long, err
		}
	}
}

func (s *lineScanner) err() error {
	return s.rerr
}

// splitLines calls fn for every non-empty line of data.
func splitLines(data []byte, fn func(line []byte, lineNo int) error) error {
	lineNo := 0
	for len(data) > 0 {
		lineNo++
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		if len(line) == 0 {
			continue
		}
		if err := fn(line, lineNo); err != nil {
			return err
		}
	}
	return nil
}

// atomicFile writes to a temp file beside dest and renames it over dest on
// commit. Until commit, dest is left untouched.
type atomicFile struct {
	dest string
	tmp  *os.File
	w    *bufio.Writer
}

const writeBufferSize = 256 << 10

// tempAttempts bounds the retries when a random temp name already exists.
const tempAttempts = 10000

// createAtomic opens a new temp file beside dest. The file is created with
// mode 0666 so the process umask applies, as with os.Create; if dest already
// exists its permission bits carry over instead.
func createAtomic(dest string) (*atomicFile, error) {
	dir, base := filepath.Split(dest)
	if dir == "" {
		dir = "."
	}

	var (
		tmp *os.File
		err error
	)
	for range tempAttempts {
		name := filepath.Join(dir, "."+base+".tmp-"+strconv.FormatUint(rand.Uint64(), 36))
		tmp, err = os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	if err != nil {
		return nil, ioError("create", dest, err)
	}

	if info, err := os.Stat(dest); err == nil {
		if err := tmp.Chmod(info.Mode().Perm()); err != nil {
			return nil, errors.Join(ioError("chmod", dest, err), tmp.Close(), removeIfExists(tmp.Name()))
		}
	}
	return &atomicFile{dest: dest, tmp: tmp, w: bufio.NewWriterSize(tmp, writeBufferSize)}, nil
}

func (a *atomicFile) Write(p []byte) (int, error) {
	return a.w.Write(p)
}

// commit flushes, syncs and renames the temp file over dest.
func (a *atomicFile) commit() error {
	if err := a.w.Flush(); err != nil {
		return errors.Join(ioError("write", a.dest, err), a.abort())
	}
	if err := a.tmp.Sync(); err != nil {
		return errors.Join(ioError("sync", a.dest, err), a.abort())
	}
	if err := a.tmp.Close(); err != nil {
		return errors.Join(ioError("close", a.dest, err), removeIfExists(a.tmp.Name()))
	}
	if err := os.Rename(a.tmp.Name(), a.dest); err != nil {
		return errors.Join(ioError("rename", a.dest, err), removeIfExists(a.tmp.Name()))
	}
	return nil
}

// abort discards the temp file. dest is not touched.
func (a *atomicFile) abort() error {
	closeErr := a.tmp.Close()
	if errors.Is(closeErr, os.ErrClosed) {
		closeErr = nil
	}
	return errors.Join(closeErr, removeIfExists(a.tmp.Name()))
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioError("remove", path, err)
	}
	return nil
}
