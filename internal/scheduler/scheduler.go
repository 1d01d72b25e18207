package scheduler

import (
	"sync"
	"time"

	"github.com/halbrec/RuinfangBot_Go/internal/worker"
)

// Scheduler runs jobs on a fixed interval by enqueueing them onto a worker
// pool. Execution happens on the pool; the scheduler only owns the tickers.
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	wg         sync.WaitGroup
}

// New creates a scheduler backed by the given worker pool.
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval. Enqueue blocks when
// the pool queue is full, which backpressures the ticker instead of piling
// up duplicate runs.
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.workerPool.Enqueue(job)
			case <-s.quit:
				return
			}
		}
	}()
}

// Start is kept for symmetry with other components; Schedule arms its ticker
// immediately.
func (s *Scheduler) Start() {}

// Stop stops all tickers and waits for the scheduling goroutines to exit.
// In-flight jobs keep running on the pool until Pool.Stop.
func (s *Scheduler) Stop() {
	close(s.quit)
	s.wg.Wait()
}
