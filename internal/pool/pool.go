package pool

import (
	"context"
	"fmt"
	"sync"

	"pokedex/pkg/logger"
)

// ProcessFunc handles one job. It must honour ctx.
type ProcessFunc[J, R any] func(ctx context.Context, job J) R

// WorkerPool runs a fixed number of workers over a job queue and publishes
// one result per processed job. Results arrive in completion order.
type WorkerPool[J, R any] struct {
	numWorkers  int
	jobQueue    chan J
	resultQueue chan R
	wg          sync.WaitGroup
	stopOnce    sync.Once
	ctx         context.Context
	cancel      context.CancelFunc
	process     ProcessFunc[J, R]
	logger      logger.Logger
}

// NewWorkerPool creates a pool bound to parent; cancelling parent stops the
// workers after their current job
func NewWorkerPool[J, R any](parent context.Context, numWorkers int, process func(ctx context.Context, job J) R, log logger.Logger) *WorkerPool[J, R] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(parent)

	return &WorkerPool[J, R]{
		numWorkers:  numWorkers,
		jobQueue:    make(chan J, numWorkers*2),
		resultQueue: make(chan R, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		process:     process,
		logger:      log,
	}
}

// Start launches the workers
func (wp *WorkerPool[J, R]) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for the workers to finish and closes the
// result channel. It is safe to call more than once.
func (wp *WorkerPool[J, R]) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.jobQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
		wp.cancel()
		wp.logger.Debug("Worker pool stopped")
	})
}

// Submit queues a job, blocking while the queue is full
func (wp *WorkerPool[J, R]) Submit(job J) error {
	select {
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	default:
	}

	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel. It is closed by Stop.
func (wp *WorkerPool[J, R]) Results() <-chan R {
	return wp.resultQueue
}

// Size returns the number of workers
func (wp *WorkerPool[J, R]) Size() int {
	return wp.numWorkers
}

func (wp *WorkerPool[J, R]) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		// Drain without processing once cancelled
		if wp.ctx.Err() != nil {
			continue
		}

		result := wp.process(wp.ctx, job)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker dropped result after cancellation", map[string]interface{}{
				"worker_id": id,
			})
		}
	}
}
