package extsort

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tamirms/extsort/internal/datagen"
)

func benchmarkSortN(b *testing.B, kind datagen.Kind, n uint64, chunkSize int64) {
	dir := b.TempDir()
	in := generate(b, dir, kind, 1, n)
	out := filepath.Join(dir, "out.txt")

	info, err := os.Stat(in)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(info.Size())
	b.ReportAllocs()

	opts := []Option{WithChunkSize(chunkSize)}
	for b.Loop() {
		var err error
		switch kind {
		case datagen.Ints:
			_, err = Sort(in, out, Int64Codec, Ascending[int64](), opts...)
		case datagen.Floats:
			_, err = Sort(in, out, Float64Codec, Ascending[float64](), opts...)
		default:
			_, err = Sort(in, out, StringCodec, Ascending[string](), opts...)
		}
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSortInts100K(b *testing.B)    { benchmarkSortN(b, datagen.Ints, 100_000, 256<<10) }
func BenchmarkSortFloats100K(b *testing.B)  { benchmarkSortN(b, datagen.Floats, 100_000, 256<<10) }
func BenchmarkSortStrings100K(b *testing.B) { benchmarkSortN(b, datagen.Strings, 100_000, 256<<10) }

// BenchmarkMergeFanIn measures the heap merge alone across many chunks.
func BenchmarkMergeFanIn(b *testing.B) {
	const chunks = 64
	const perChunk = 2_000

	dir := b.TempDir()
	base := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")

	contents := make([][]string, chunks)
	for c := range contents {
		lines := make([]int64, perChunk)
		for i := range lines {
			lines[i] = int64(i*chunks + c)
		}
		contents[c] = ints(lines...)
	}

	b.ReportAllocs()
	for b.Loop() {
		b.StopTimer()
		writeChunks(b, base, contents...)
		b.StartTimer()
		if _, err := Merge(base, chunks, out, Int64Codec, Ascending[int64]()); err != nil {
			b.Fatal(err)
		}
	}
}
