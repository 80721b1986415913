package utils

import (
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPool manages a pool of goroutines with rate limiting.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastRequest time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency and rate limit.
// A non-positive maxWorkers is treated as 1.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
		lastRequest: time.Now(),
	}
}

// Submit enqueues a job for execution in the pool. It blocks only while
// every worker slot is taken.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.enforceRateLimit()
		job()
	}()
}

// Go schedules a job without blocking the caller. The job waits for a free
// worker slot on its own goroutine; Wait still covers it.
func (wp *WorkerPool) Go(job func()) {
	wp.wg.Add(1)

	go func() {
		defer wp.wg.Done()
		wp.semaphore <- struct{}{}
		defer func() { <-wp.semaphore }()

		wp.enforceRateLimit()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) enforceRateLimit() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	elapsed := time.Since(wp.lastRequest)
	if elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	wp.lastRequest = time.Now()
}

// Sequence hands out increasing tickets and remembers the newest one, so a
// caller can tell whether a finished request has since been superseded.
type Sequence struct {
	latest atomic.Uint64
}

// Next issues a new ticket, superseding every earlier one.
func (s *Sequence) Next() uint64 {
	return s.latest.Add(1)
}

// IsLatest reports whether ticket is the most recently issued one.
func (s *Sequence) IsLatest(ticket uint64) bool {
	return s.latest.Load() == ticket
}

// Latest returns the most recently issued ticket, or 0 before any.
func (s *Sequence) Latest() uint64 {
	return s.latest.Load()
}
