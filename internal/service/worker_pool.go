package service

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/anime-shed/mindtrack-report/internal/logger"
)

// WorkerPool bounds how many renders run at once
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	workerWG sync.WaitGroup
	once     sync.Once

	mu     sync.RWMutex
	closed bool

	active    atomic.Int64
	submitted atomic.Int64
	completed atomic.Int64
}

// PoolStats is a snapshot of pool activity
type PoolStats struct {
	Workers   int   `json:"workers"`
	Queued    int   `json:"queued"`
	Active    int64 `json:"active"`
	Submitted int64 `json:"submitted"`
	Completed int64 `json:"completed"`
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			wp.workerWG.Add(1)
			go wp.worker()
		}
	})
}

// worker processes jobs from the job queue
func (wp *WorkerPool) worker() {
	defer wp.workerWG.Done()
	for job := range wp.jobQueue {
		wp.run(job)
	}
}

func (wp *WorkerPool) run(job func()) {
	wp.active.Add(1)
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("Worker job panicked")
		}
		wp.active.Add(-1)
		wp.completed.Add(1)
	}()
	job()
}

// Submit queues job. It returns false when the pool is closed or ctx ends
// before a queue slot frees up; the job is then never run.
func (wp *WorkerPool) Submit(ctx context.Context, job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}

	select {
	case wp.jobQueue <- job:
		wp.submitted.Add(1)
		return true
	case <-ctx.Done():
		return false
	}
}

// GetStats returns current pool counters
func (wp *WorkerPool) GetStats() PoolStats {
	return PoolStats{
		Workers:   wp.workers,
		Queued:    len(wp.jobQueue),
		Active:    wp.active.Load(),
		Submitted: wp.submitted.Load(),
		Completed: wp.completed.Load(),
	}
}

// Close stops accepting jobs, lets queued jobs finish and stops the workers
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.workerWG.Wait()
}
