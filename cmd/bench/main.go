// Bench is a benchmarking tool for measuring external sort throughput per
// phase and peak memory usage.
//
// Usage:
//
//	go run ./cmd/bench -records 50000000 -type int -chunk-size 64MB
//
// Flags:
//
//	-records     Number of records to generate (default: 10,000,000)
//	-type        Record type: int, float or string (default: int)
//	-chunk-size  Chunk threshold (default: 100MB)
//	-workers     Maximum parallel chunk sorts (default: 11)
//	-seed        Data generator seed (default: 1)
//	-dir         Scratch directory (default: system temp)
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tamirms/extsort"
	"github.com/tamirms/extsort/internal/config"
	"github.com/tamirms/extsort/internal/datagen"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024 // Convert KB to bytes on Linux
	}
	return maxRSS
}

// peakSampler tracks peak heap and RSS at 10ms granularity.
// Uses runtime/metrics instead of ReadMemStats to avoid stop-the-world pauses
// that distort CPU profiles.
type peakSampler struct {
	peakHeap atomic.Uint64
	peakRSS  atomic.Uint64
	done     chan struct{}
}

func startSampler(baseHeap, baseRSS uint64) *peakSampler {
	s := &peakSampler{done: make(chan struct{})}
	s.peakHeap.Store(baseHeap)
	s.peakRSS.Store(baseRSS)
	go func() {
		samples := []metrics.Sample{
			{Name: "/memory/classes/heap/objects:bytes"},
		}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				raise(&s.peakHeap, samples[0].Value.Uint64())
				raise(&s.peakRSS, getMaxRSS())
			}
		}
	}()
	return s
}

func raise(peak *atomic.Uint64, v uint64) {
	for {
		old := peak.Load()
		if v <= old || peak.CompareAndSwap(old, v) {
			return
		}
	}
}

func (s *peakSampler) stop() {
	close(s.done)
	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	raise(&s.peakHeap, final.Alloc)
	raise(&s.peakRSS, getMaxRSS())
}

func main() {
	recordsFlag := flag.Uint64("records", 10_000_000, "number of records")
	typeFlag := flag.String("type", "int", "record type: int, float or string")
	chunkFlag := flag.String("chunk-size", "100MB", "chunk threshold")
	workersFlag := flag.Int("workers", extsort.DefaultMaxWorkers, "maximum parallel chunk sorts")
	seedFlag := flag.Uint("seed", 1, "data generator seed")
	dirFlag := flag.String("dir", "", "scratch directory (default: system temp)")
	verbose := flag.Bool("v", false, "log pipeline progress to stderr")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (sort phases only)")
	memprofile := flag.String("memprofile", "", "write memory profile to file (after sort)")
	flag.Parse()

	kind, err := datagen.ParseKind(*typeFlag)
	if err != nil {
		fmt.Println(err)
		return
	}
	chunkSize, err := config.ParseBytes(*chunkFlag)
	if err != nil {
		fmt.Printf("Invalid -chunk-size: %v\n", err)
		return
	}

	tmpDir, err := os.MkdirTemp(*dirFlag, "bench-")
	if err != nil {
		fmt.Printf("Failed to create temp dir: %v\n", err)
		return
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	in := filepath.Join(tmpDir, "input.txt")
	out := filepath.Join(tmpDir, "output.txt")

	fmt.Println("Generating records...")
	genStart := time.Now()
	f, err := os.Create(in)
	if err != nil {
		fmt.Printf("Failed to create input: %v\n", err)
		return
	}
	inputBytes, err := datagen.Write(f, kind, uint32(*seedFlag), *recordsFlag)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Printf("Failed to write input: %v\n", err)
		return
	}
	genDuration := time.Since(genStart)

	logger := slog.New(slog.DiscardHandler)
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	opts := []extsort.Option{
		extsort.WithChunkSize(chunkSize),
		extsort.WithWorkers(*workersFlag),
		extsort.WithLogger(logger),
	}

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()
	sampler := startSampler(baseline.Alloc, baselineRSS)

	if *cpuprofile != "" {
		pf, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Printf("could not create CPU profile: %v\n", err)
			return
		}
		defer func() { _ = pf.Close() }()
		if err := pprof.StartCPUProfile(pf); err != nil {
			fmt.Printf("could not start CPU profile: %v\n", err)
			return
		}
	}

	fmt.Println("Sorting...")
	var st extsort.Stats
	switch kind {
	case datagen.Ints:
		st, err = extsort.Sort(in, out, extsort.Int64Codec, extsort.Ascending[int64](), opts...)
	case datagen.Floats:
		st, err = extsort.Sort(in, out, extsort.Float64Codec, extsort.Ascending[float64](), opts...)
	default:
		st, err = extsort.Sort(in, out, extsort.StringCodec, extsort.Ascending[string](), opts...)
	}

	if *cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if *memprofile != "" {
		mf, merr := os.Create(*memprofile)
		if merr != nil {
			fmt.Printf("could not create memory profile: %v\n", merr)
		} else {
			runtime.GC() // Get up-to-date statistics
			if merr := pprof.WriteHeapProfile(mf); merr != nil {
				fmt.Printf("could not write memory profile: %v\n", merr)
			}
			_ = mf.Close()
		}
	}
	sampler.stop()

	peakHeapMem := sampler.peakHeap.Load() - baseline.Alloc
	peakRSSMem := sampler.peakRSS.Load() - baselineRSS

	if err != nil {
		fmt.Printf("Sort failed: %v\n", err)
		return
	}

	fmt.Println("Verifying output...")
	var rep extsort.Report
	switch kind {
	case datagen.Ints:
		rep, err = extsort.Verify(out, extsort.Int64Codec, extsort.Ascending[int64]())
	case datagen.Floats:
		rep, err = extsort.Verify(out, extsort.Float64Codec, extsort.Ascending[float64]())
	default:
		rep, err = extsort.Verify(out, extsort.StringCodec, extsort.Ascending[string]())
	}
	if err != nil {
		fmt.Printf("Verify failed: %v\n", err)
		return
	}
	status := "sorted"
	if !rep.Sorted || uint64(rep.Records) != *recordsFlag {
		status = "INVALID"
	}

	total := st.SplitDuration + st.SortDuration + st.MergeDuration
	mrecs := func(d time.Duration) float64 {
		return float64(*recordsFlag) / d.Seconds() / 1_000_000
	}

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦══════════════════╗\n")
	fmt.Printf("║ Type: %-14s║ Chunks: %-9d║\n", kind, st.Chunks)
	fmt.Printf("╠═════════════════════╬══════════════════╣\n")
	fmt.Printf("║ Metric              ║ Value            ║\n")
	fmt.Printf("╠═════════════════════╬══════════════════╣\n")
	fmt.Printf("║ Records             ║ %12d     ║\n", *recordsFlag)
	fmt.Printf("║ Input size          ║ %12s     ║\n", config.FormatBytes(inputBytes))
	fmt.Printf("║ Chunk size          ║ %12s     ║\n", config.FormatBytes(chunkSize))
	fmt.Printf("║ Generate time       ║ %8.2f sec     ║\n", genDuration.Seconds())
	fmt.Printf("║ Split time          ║ %8.2f sec     ║\n", st.SplitDuration.Seconds())
	fmt.Printf("║ Sort time           ║ %8.2f sec     ║\n", st.SortDuration.Seconds())
	fmt.Printf("║ Merge time          ║ %8.2f sec     ║\n", st.MergeDuration.Seconds())
	fmt.Printf("║ Total               ║ %8.2f sec     ║\n", total.Seconds())
	fmt.Printf("║ Throughput          ║ %8.2f M/sec   ║\n", mrecs(total))
	fmt.Printf("║ Merge throughput    ║ %8.2f M/sec   ║\n", mrecs(st.MergeDuration))
	fmt.Printf("║ Peak heap memory    ║ %8.1f MB      ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %8.1f MB      ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("║ Output              ║ %-16s ║\n", status)
	fmt.Printf("╚═════════════════════╩══════════════════╝\n")
}
