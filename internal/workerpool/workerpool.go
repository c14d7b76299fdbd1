// Package workerpool provides a fixed-size pool of goroutines consuming a
// shared task queue.
//
// Usage:
//
//	pool := workerpool.New(runtime.NumCPU())
//	for _, job := range jobs {
//	    if err := pool.Enqueue(job); err != nil {
//	        return err
//	    }
//	}
//	pool.Shutdown() // runs every queued task, then joins the workers
//
// The pool has no error channel. Tasks report their own failures (for
// example into a mutex-guarded collector captured by the closure), and a
// panicking task is not recovered.
package workerpool

import (
	"runtime"
	"sync"

	exterrors "github.com/tamirms/extsort/errors"
	"golang.org/x/sync/errgroup"
)

// queueMultiplier sizes the task queue relative to the worker count.
const queueMultiplier = 2

// Pool is a fixed set of workers spawned at creation and joined by Shutdown.
type Pool struct {
	numWorkers int
	tasks      chan func()
	group      errgroup.Group

	mu     sync.RWMutex // guards closed against concurrent sends and close
	closed bool
}

// New creates a pool with the given number of workers.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		tasks:      make(chan func(), numWorkers*queueMultiplier),
	}
	for range numWorkers {
		p.group.Go(p.worker)
	}
	return p
}

// worker runs tasks until the queue is closed and drained.
func (p *Pool) worker() error {
	for task := range p.tasks {
		task()
	}
	return nil
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// Enqueue submits a task. It blocks while the queue is full and returns
// ErrPoolClosed once Shutdown has been called. Tasks must not call Enqueue
// on their own pool.
func (p *Pool) Enqueue(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return exterrors.ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks, lets the workers drain everything already
// queued and blocks until all of them have exited. Calling Shutdown more
// than once is safe.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	_ = p.group.Wait() // workers never return an error
}
