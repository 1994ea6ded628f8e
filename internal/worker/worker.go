package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrPoolStopped = errors.New("worker pool stopped")

type ProcessFunc[T any] func(ctx context.Context, job T) error

// WorkerPool runs a fixed number of goroutines over a buffered job queue.
// The queue is never closed; Stop signals through done instead, so a late
// Submit gets ErrPoolStopped rather than a panic.
type WorkerPool[T any] struct {
	numWorkers int
	jobs       chan T
	done       chan struct{}
	processor  ProcessFunc[T]
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

func NewWorkerPool[T any](numWorkers int, bufferSize int, processor ProcessFunc[T]) *WorkerPool[T] {
	return &WorkerPool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan T, bufferSize),
		done:       make(chan struct{}),
		processor:  processor,
	}
}

func (wp *WorkerPool[T]) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool[T]) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-wp.done:
			wp.drain(ctx, id)
			return
		case job := <-wp.jobs:
			wp.process(ctx, id, job)
		}
	}
}

// drain processes whatever is still queued once Stop has been called.
func (wp *WorkerPool[T]) drain(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case job := <-wp.jobs:
			wp.process(ctx, id, job)
		default:
			return
		}
	}
}

func (wp *WorkerPool[T]) process(ctx context.Context, id int, job T) {
	if err := wp.processor(ctx, job); err != nil {
		slog.Warn("job failed", "worker", id, "error", err)
	}
}

// Submit blocks while the queue is full. It returns ctx.Err() once ctx is
// done and ErrPoolStopped once Stop has been called.
func (wp *WorkerPool[T]) Submit(ctx context.Context, job T) error {
	select {
	case <-wp.done:
		return ErrPoolStopped
	default:
	}

	select {
	case wp.jobs <- job:
		return nil
	case <-wp.done:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop refuses further jobs and waits for workers to drain the queue.
func (wp *WorkerPool[T]) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.done)
	})
	wp.wg.Wait()
}
