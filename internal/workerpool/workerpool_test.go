package workerpool

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	exterrors "github.com/tamirms/extsort/errors"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Shutdown()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Shutdown()

	if pool.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers() = %d, want %d", pool.Workers(), runtime.GOMAXPROCS(0))
	}
}

func TestEnqueueRunsEveryTask(t *testing.T) {
	pool := New(4)

	n := 1000
	var ran atomic.Int64
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		if err := pool.Enqueue(func() {
			ran.Add(1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	wg.Wait()
	pool.Shutdown()

	if got := ran.Load(); got != int64(n) {
		t.Errorf("ran %d tasks, want %d", got, n)
	}
}

// TestShutdownDrainsQueue verifies that tasks queued but not yet started when
// Shutdown is called still run before Shutdown returns.
func TestShutdownDrainsQueue(t *testing.T) {
	pool := New(1)

	release := make(chan struct{})
	if err := pool.Enqueue(func() { <-release }); err != nil {
		t.Fatal(err)
	}

	var ran atomic.Int64
	queued := pool.Workers() * queueMultiplier
	for range queued {
		if err := pool.Enqueue(func() { ran.Add(1) }); err != nil {
			t.Fatal(err)
		}
	}

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Shutdown returned while a task was still blocked")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done

	if got := ran.Load(); got != int64(queued) {
		t.Errorf("drained %d queued tasks, want %d", got, queued)
	}
}

func TestEnqueueAfterShutdown(t *testing.T) {
	pool := New(2)
	pool.Shutdown()

	err := pool.Enqueue(func() {})
	if !errors.Is(err, exterrors.ErrPoolClosed) {
		t.Fatalf("Enqueue after Shutdown = %v, want ErrPoolClosed", err)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	pool := New(2)
	pool.Shutdown()
	pool.Shutdown()
}

func TestConcurrencyBounded(t *testing.T) {
	const workers = 3
	pool := New(workers)

	var running, peak atomic.Int64
	var wg sync.WaitGroup
	n := 50
	wg.Add(n)
	for range n {
		if err := pool.Enqueue(func() {
			defer wg.Done()
			cur := running.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
		}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	pool.Shutdown()

	if got := peak.Load(); got > workers {
		t.Errorf("peak concurrency = %d, want <= %d", got, workers)
	}
}

// TestFailingTaskDoesNotBlockOthers checks that a task reporting failure
// through a shared slot leaves the remaining tasks unaffected.
func TestFailingTaskDoesNotBlockOthers(t *testing.T) {
	pool := New(2)

	var mu sync.Mutex
	var errs []error
	var ok atomic.Int64
	var wg sync.WaitGroup
	wg.Add(10)
	for i := range 10 {
		if err := pool.Enqueue(func() {
			defer wg.Done()
			if i == 3 {
				mu.Lock()
				errs = append(errs, errors.New("task 3 failed"))
				mu.Unlock()
				return
			}
			ok.Add(1)
		}); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()
	pool.Shutdown()

	if len(errs) != 1 {
		t.Errorf("collected %d errors, want 1", len(errs))
	}
	if ok.Load() != 9 {
		t.Errorf("successful tasks = %d, want 9", ok.Load())
	}
}
