package extsort

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// Report describes one scanned record file.
type Report struct {
	Records int64
	Dropped int64 // unparsable lines

	// Sorted reports whether every record compares >= its predecessor.
	// FirstUnsortedLine is the 1-based line number of the first violation.
	Sorted            bool
	FirstUnsortedLine int

	// Digest is an order-independent hash of the parsed records in their
	// canonical encoding. Two files hold the same multiset of records iff
	// (with overwhelming probability) their Records and Digest match.
	Digest uint64

	// Checksum is the xxHash64 of the raw file bytes.
	Checksum uint64
}

// SameRecords reports whether r and other describe the same record multiset.
func (r Report) SameRecords(other Report) bool {
	return r.Records == other.Records && r.Digest == other.Digest
}

// Verify streams the file at path and reports its record count, order,
// multiset digest and byte checksum. Unparsable lines are counted in
// Dropped and skipped; cmp may be nil when order is irrelevant.
func Verify[T any](path string, codec Codec[T], cmp Compare[T], opts ...Option) (Report, error) {
	rep := Report{Sorted: true}
	if _, err := newConfig(opts); err != nil {
		return rep, err
	}

	f, err := os.Open(path)
	if err != nil {
		return rep, ioError("open", path, err)
	}
	defer f.Close()
	fadviseSequential(int(f.Fd()))

	sum := xxhash.New()
	sc := newLineScanner(io.TeeReader(f, sum), readBufferSize)

	var (
		prev    T
		hasPrev bool
		buf     []byte
	)
	for {
		line, ok := sc.next()
		if !ok {
			break
		}
		v, err := codec.Parse(line)
		if err != nil {
			rep.Dropped++
			continue
		}
		rep.Records++

		buf = codec.Append(buf[:0], v)
		rep.Digest += xxh3.Hash(buf)

		if cmp != nil && hasPrev && rep.Sorted && cmp(v, prev) < 0 {
			rep.Sorted = false
			rep.FirstUnsortedLine = sc.line
		}
		prev, hasPrev = v, true
	}
	if err := sc.err(); err != nil {
		return rep, ioError("read", path, err)
	}

	rep.Checksum = sum.Sum64()
	return rep, nil
}
