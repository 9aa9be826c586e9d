package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// WorkItem is a unit of work with a stable identifier for logging.
type WorkItem interface {
	ID() string
}

// Processor handles one work item.
type Processor[T WorkItem, R any] func(context.Context, T) (R, error)

// WorkerPool runs a processor over items with bounded concurrency. One
// worker processes items strictly in order.
type WorkerPool[T WorkItem, R any] struct {
	workers int
	timeout time.Duration
	logger  *slog.Logger
}

type WorkerPoolOption func(*workerPoolConfig)

type workerPoolConfig struct {
	workers int
	timeout time.Duration
	logger  *slog.Logger
}

// WithWorkers sets the number of concurrent workers
func WithWorkers(workers int) WorkerPoolOption {
	return func(c *workerPoolConfig) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

// WithTimeout bounds each work item.
func WithTimeout(timeout time.Duration) WorkerPoolOption {
	return func(c *workerPoolConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithPoolLogger(logger *slog.Logger) WorkerPoolOption {
	return func(c *workerPoolConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewWorkerPool[T WorkItem, R any](options ...WorkerPoolOption) *WorkerPool[T, R] {
	config := workerPoolConfig{
		workers: 1,
		timeout: 5 * time.Minute,
		logger:  slog.Default(),
	}
	for _, option := range options {
		option(&config)
	}
	return &WorkerPool[T, R]{
		workers: config.workers,
		timeout: config.timeout,
		logger:  config.logger,
	}
}

// Process runs processor over items and returns the results in item
// order. The first failure cancels the remaining work.
func (p *WorkerPool[T, R]) Process(ctx context.Context, items []T, processor Processor[T, R]) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	p.logger.Debug("starting worker pool",
		"worker_count", p.workers,
		"item_count", len(items),
		"timeout", p.timeout)

	type job struct {
		index int
		item  T
	}
	workCh := make(chan job)
	results := make([]R, len(items))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		workerID := i
		g.Go(func() error {
			processed := 0
			for j := range workCh {
				if err := ctx.Err(); err != nil {
					return err
				}
				itemCtx, cancel := context.WithTimeout(ctx, p.timeout)
				result, err := processor(itemCtx, j.item)
				cancel()
				if err != nil {
					p.logger.Error("worker failed to process item",
						"worker_id", workerID,
						"item_id", j.item.ID(),
						"error", err)
					return fmt.Errorf("processing %s: %w", j.item.ID(), err)
				}
				results[j.index] = result
				processed++
			}
			p.logger.Debug("worker completed",
				"worker_id", workerID,
				"processed_count", processed)
			return nil
		})
	}

	g.Go(func() error {
		defer close(workCh)
		for i, item := range items {
			select {
			case workCh <- job{i, item}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
