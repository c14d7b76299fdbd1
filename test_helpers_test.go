package extsort

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/tamirms/extsort/internal/datagen"
)

// writeLines writes lines joined by '\n' with a trailing newline and returns
// the path.
func writeLines(t testing.TB, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var data string
	if len(lines) > 0 {
		data = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// readLines returns the lines of path without their newlines.
func readLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// chunkFiles lists the chunk files currently beside base.
func chunkFiles(t testing.TB, base string) []string {
	t.Helper()
	matches, err := filepath.Glob(base + chunkSuffix + "*")
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

// writeChunks writes chunk files 0..len(chunks)-1 for base.
func writeChunks(t testing.TB, base string, chunks ...[]string) {
	t.Helper()
	for i, lines := range chunks {
		dir, name := filepath.Split(ChunkPath(base, i))
		writeLines(t, dir, name, lines...)
	}
}

// generate writes count datagen records of kind and returns the path.
func generate(t testing.TB, dir string, kind datagen.Kind, seed uint32, count uint64) string {
	t.Helper()
	path := filepath.Join(dir, "input-"+kind.String()+".txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := datagen.Write(f, kind, seed, count); err != nil {
		f.Close()
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func ints(vs ...int64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strconv.FormatInt(v, 10)
	}
	return out
}

func assertLines(t testing.TB, path string, want []string) {
	t.Helper()
	got := readLines(t, path)
	if !slices.Equal(got, want) {
		t.Fatalf("%s:\n got  %q\n want %q", filepath.Base(path), got, want)
	}
}

func assertNoChunks(t testing.TB, base string) {
	t.Helper()
	if left := chunkFiles(t, base); len(left) != 0 {
		t.Fatalf("chunk files left behind: %v", left)
	}
}

// byFirstByte orders strings by their first byte only, so records with the
// same first byte compare equal. Used to observe stability.
func byFirstByte(a, b string) int {
	return int(a[0]) - int(b[0])
}

// upperCodec is a text-mode codec that rejects lines containing lowercase
// letters. Split does not parse text records, so the failure surfaces in
// the chunk sort.
type upperCodec struct{}

func (upperCodec) Parse(line []byte) (string, error) {
	if strings.ToUpper(string(line)) != string(line) {
		return "", strconv.ErrSyntax
	}
	return string(line), nil
}

func (upperCodec) Append(dst []byte, v string) []byte { return append(dst, v...) }

func (upperCodec) RecordSize() int { return 0 }
