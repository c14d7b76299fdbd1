package extsort

import (
	"bytes"
	"cmp"
	"strconv"
	"strings"
)

// Codec converts records to and from their one-line on-disk form.
//
// Parse receives a line without its trailing newline; the slice is only valid
// for the duration of the call. Append must never emit a newline.
type Codec[T any] interface {
	Parse(line []byte) (T, error)
	Append(dst []byte, v T) []byte

	// RecordSize is the fixed in-memory width of one record in bytes, used
	// to turn the byte chunk threshold into an element count. Zero selects
	// the byte-oriented text splitting policy.
	RecordSize() int
}

// Compare orders two records: negative if a sorts before b, zero if equal,
// positive otherwise. It must be a total order.
type Compare[T any] func(a, b T) int

// Ascending returns the natural order of T.
func Ascending[T cmp.Ordered]() Compare[T] {
	return cmp.Compare[T]
}

// Descending returns the reverse of the natural order of T.
func Descending[T cmp.Ordered]() Compare[T] {
	return Ascending[T]().Reverse()
}

// Reverse returns the inverted order.
func (c Compare[T]) Reverse() Compare[T] {
	return func(a, b T) int { return c(b, a) }
}

type int64Codec struct{}

// Int64Codec stores base-10 signed 64-bit integers. Surrounding whitespace is
// ignored on parse.
var Int64Codec Codec[int64] = int64Codec{}

func (int64Codec) Parse(line []byte) (int64, error) {
	return strconv.ParseInt(string(bytes.TrimSpace(line)), 10, 64)
}

func (int64Codec) Append(dst []byte, v int64) []byte {
	return strconv.AppendInt(dst, v, 10)
}

func (int64Codec) RecordSize() int { return 8 }

type float64Codec struct{}

// Float64Codec stores float64 values in fixed (non-exponent) notation with
// the fewest digits that parse back to the identical value, so writing and
// re-reading a chunk never loses precision.
var Float64Codec Codec[float64] = float64Codec{}

func (float64Codec) Parse(line []byte) (float64, error) {
	return strconv.ParseFloat(string(bytes.TrimSpace(line)), 64)
}

func (float64Codec) Append(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'f', -1, 64)
}

func (float64Codec) RecordSize() int { return 8 }

type stringCodec struct{}

// StringCodec stores raw text lines. Records are compared byte-wise by the
// Ascending/Descending comparators.
var StringCodec Codec[string] = stringCodec{}

func (stringCodec) Parse(line []byte) (string, error) {
	// Trailing '\r' from CRLF input is part of the record; callers wanting
	// to normalize line endings should do so before sorting.
	return string(line), nil
}

func (stringCodec) Append(dst []byte, v string) []byte {
	return append(dst, v...)
}

func (stringCodec) RecordSize() int { return 0 }

// StringCompareFold orders strings case-insensitively, falling back to the
// byte order so that the result stays a total order.
func StringCompareFold(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
