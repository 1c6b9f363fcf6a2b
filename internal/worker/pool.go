package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// ErrQueueFull is returned when the buffer has no room for another job
var ErrQueueFull = errors.New("worker: queue full")

// ErrStopped is returned after Stop has been called
var ErrStopped = errors.New("worker: pool stopped")

// Job is one unit of background work
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs jobs on a bounded set of conc goroutines fed by a buffered channel.
type Pool struct {
	jobs    chan Job
	workers *pool.Pool
	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a pool with the given queue capacity. Call Start to run it.
func NewPool(queueSize int) *Pool {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Pool{jobs: make(chan Job, queueSize)}
}

// Start launches numWorkers goroutines. They exit when ctx is cancelled or
// the pool is stopped and drained.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	p.mu.Lock()
	p.workers = pool.New().WithMaxGoroutines(numWorkers)
	p.mu.Unlock()

	for i := 0; i < numWorkers; i++ {
		id := i
		p.workers.Go(func() { p.run(ctx, id) })
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Submit enqueues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	workers := p.workers
	p.mu.Unlock()

	if workers != nil {
		workers.Wait()
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(ctx, id, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, id int, job Job) {
	var catcher panics.Catcher
	catcher.Try(func() {
		if err := job.Run(ctx); err != nil {
			log.Error().Err(err).Int("worker", id).Str("job", job.Name).Msg("job failed")
		}
	})
	if r := catcher.Recovered(); r != nil {
		log.Error().Int("worker", id).Str("job", job.Name).Interface("panic", r.Value).Msg("job panicked")
	}
}
