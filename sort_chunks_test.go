package extsort

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"

	exterrors "github.com/tamirms/extsort/errors"
)

func TestSortAllSortsEveryChunk(t *testing.T) {
	base := filepath.Join(t.TempDir(), "in.txt")
	writeChunks(t, base,
		ints(5, 3, 3, 1),
		ints(-2, 9, 0),
		ints(7),
	)

	if err := SortAll(base, 3, Int64Codec, Ascending[int64](), WithWorkers(2)); err != nil {
		t.Fatal(err)
	}
	assertLines(t, ChunkPath(base, 0), ints(1, 3, 3, 5))
	assertLines(t, ChunkPath(base, 1), ints(-2, 0, 9))
	assertLines(t, ChunkPath(base, 2), ints(7))
}

func TestSortAllManyChunksFewWorkers(t *testing.T) {
	base := filepath.Join(t.TempDir(), "in.txt")
	const n = 40
	var chunks [][]string
	for i := range n {
		chunks = append(chunks, ints(int64(i+2), int64(i), int64(i+1)))
	}
	writeChunks(t, base, chunks...)

	if err := SortAll(base, n, Int64Codec, Descending[int64](), WithWorkers(1)); err != nil {
		t.Fatal(err)
	}
	for i := range n {
		assertLines(t, ChunkPath(base, i), ints(int64(i+2), int64(i+1), int64(i)))
	}
}

func TestSortChunkIsStable(t *testing.T) {
	base := filepath.Join(t.TempDir(), "in.txt")
	writeChunks(t, base, []string{"b1", "a1", "c1", "b2", "a2", "b3", "a3"})

	if err := SortAll(base, 1, StringCodec, Compare[string](byFirstByte)); err != nil {
		t.Fatal(err)
	}
	assertLines(t, ChunkPath(base, 0), []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1"})
}

func TestSortAllMissingChunk(t *testing.T) {
	base := filepath.Join(t.TempDir(), "in.txt")
	writeChunks(t, base, ints(2, 1), ints(4, 3), ints(6, 5))
	if err := os.Remove(ChunkPath(base, 1)); err != nil {
		t.Fatal(err)
	}

	err := SortAll(base, 3, Int64Codec, Ascending[int64]())
	if !errors.Is(err, exterrors.ErrChunkSort) {
		t.Fatalf("expected ErrChunkSort, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected cause fs.ErrNotExist, got %v", err)
	}

	// The surviving chunks are still sorted.
	assertLines(t, ChunkPath(base, 0), ints(1, 2))
	assertLines(t, ChunkPath(base, 2), ints(5, 6))
}

func TestSortAllStrictParseLeavesChunk(t *testing.T) {
	base := filepath.Join(t.TempDir(), "in.txt")
	writeChunks(t, base, []string{"3", "x", "1"}, ints(2, 1))

	err := SortAll(base, 2, Int64Codec, Ascending[int64](), WithStrictParse())
	if !errors.Is(err, exterrors.ErrChunkSort) || !errors.Is(err, exterrors.ErrParse) {
		t.Fatalf("expected ErrChunkSort wrapping ErrParse, got %v", err)
	}
	assertLines(t, ChunkPath(base, 0), []string{"3", "x", "1"})
	assertLines(t, ChunkPath(base, 1), ints(1, 2))
}

func TestSortAllDropsUnparsable(t *testing.T) {
	base := filepath.Join(t.TempDir(), "in.txt")
	writeChunks(t, base, []string{"3", "x", "1", "", "y"})

	cfg, err := newConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := sortAll(base, 1, Int64Codec, Ascending[int64](), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.completed != 1 || res.records != 2 || res.dropped != 2 {
		t.Errorf("result = %+v, want 1 completed, 2 records, 2 dropped", res)
	}
	assertLines(t, ChunkPath(base, 0), ints(1, 3))
}

func TestSortAllChunkCount(t *testing.T) {
	base := filepath.Join(t.TempDir(), "in.txt")
	if err := SortAll(base, 0, Int64Codec, Ascending[int64]()); err != nil {
		t.Errorf("n=0: %v", err)
	}
	if err := SortAll(base, -1, Int64Codec, Ascending[int64]()); !errors.Is(err, exterrors.ErrInvalidChunkCount) {
		t.Errorf("n=-1: expected ErrInvalidChunkCount, got %v", err)
	}
	if err := SortAll(base, 1, Int64Codec, Ascending[int64](), WithWorkers(0)); !errors.Is(err, exterrors.ErrInvalidWorkers) {
		t.Errorf("workers=0: expected ErrInvalidWorkers, got %v", err)
	}
}

func TestSortAllNoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "in.txt")
	var chunks [][]string
	for i := range 8 {
		chunks = append(chunks, []string{strconv.Itoa(9 - i), strconv.Itoa(i)})
	}
	writeChunks(t, base, chunks...)

	if err := SortAll(base, len(chunks), Int64Codec, Ascending[int64]()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if len(names) != len(chunks) {
		t.Errorf("directory holds %v, want only the %d chunk files", names, len(chunks))
	}
	if slices.ContainsFunc(names, func(s string) bool { return s[0] == '.' }) {
		t.Errorf("temporary files left behind: %v", names)
	}
}
