// Package datagen writes deterministic pseudo-random record files for tests,
// benchmarks and the CLI "generate" command.
//
// Record i of a file is derived from murmur3(seed, i) alone, so any record
// can be regenerated without replaying the ones before it, and the same
// (kind, seed, count) always yields byte-identical output.
package datagen

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/spaolacci/murmur3"
)

// Kind selects the record type to generate.
type Kind int

const (
	Ints Kind = iota
	Floats
	Strings
)

// Value ranges for each kind.
const (
	IntMin = -1_000_000_000
	IntMax = 1_000_000_000

	FloatMin = -1e6
	FloatMax = 1e6

	StringMinLen = 5
	StringMaxLen = 15
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ParseKind maps "int", "float" or "string" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int", "ints":
		return Ints, nil
	case "float", "floats":
		return Floats, nil
	case "string", "strings":
		return Strings, nil
	default:
		return 0, fmt.Errorf("datagen: unknown kind %q (want int, float or string)", s)
	}
}

func (k Kind) String() string {
	switch k {
	case Ints:
		return "int"
	case Floats:
		return "float"
	case Strings:
		return "string"
	default:
		return "unknown"
	}
}

// hash returns the two 64-bit halves of murmur3-128 over index i.
func hash(seed uint32, i uint64) (uint64, uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], i)
	return murmur3.Sum128WithSeed(b[:], seed)
}

// Int returns record i of an Ints file.
func Int(seed uint32, i uint64) int64 {
	h1, _ := hash(seed, i)
	span := uint64(IntMax - IntMin + 1)
	return IntMin + int64(h1%span)
}

// Float returns record i of a Floats file.
func Float(seed uint32, i uint64) float64 {
	h1, _ := hash(seed, i)
	u := float64(h1>>11) / (1 << 53) // [0, 1)
	return FloatMin + u*(FloatMax-FloatMin)
}

// String returns record i of a Strings file.
func String(seed uint32, i uint64) string {
	h1, h2 := hash(seed, i)
	n := StringMinLen + int(h1%uint64(StringMaxLen-StringMinLen+1))
	b := make([]byte, n)
	x := h2
	for j := range b {
		if j > 0 && j%10 == 0 {
			// 10 symbols use 60 bits; rehash for longer strings.
			_, x = hash(seed^uint32(j), i)
		}
		b[j] = alphabet[x%uint64(len(alphabet))]
		x /= uint64(len(alphabet))
	}
	return string(b)
}

// Write writes count records of kind, one per line, and returns the number
// of bytes written.
func Write(w io.Writer, kind Kind, seed uint32, count uint64) (int64, error) {
	bw := bufio.NewWriterSize(w, 256<<10)
	var (
		buf     []byte
		written int64
	)
	for i := range count {
		buf = buf[:0]
		switch kind {
		case Ints:
			buf = strconv.AppendInt(buf, Int(seed, i), 10)
		case Floats:
			buf = strconv.AppendFloat(buf, Float(seed, i), 'g', -1, 64)
		case Strings:
			buf = append(buf, String(seed, i)...)
		default:
			return written, fmt.Errorf("datagen: unknown kind %d", kind)
		}
		buf = append(buf, '\n')
		n, err := bw.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}
