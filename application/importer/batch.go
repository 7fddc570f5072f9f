package importer

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultParallelism is deliberately small: batch imports fan out to
// downstream HTTP services that rate-limit aggressively.
const DefaultParallelism = 4

// TransformFunc converts one inbound record into its imported form
type TransformFunc[T, R any] func(ctx context.Context, item T) (R, error)

// BatchProcessor maps inbound import records through a transform with
// bounded parallelism over partitioned sublists. Any failure during the
// parallel pass aborts it and the whole input is re-processed strictly
// sequentially in original order; partial parallel results are discarded.
// Simplicity over throughput: the fallback preserves ordering and makes the
// failure reproducible.
type BatchProcessor[T, R any] struct {
	transform   TransformFunc[T, R]
	parallelism int
	logger      *zap.Logger
}

// NewBatchProcessor creates a processor with the given parallelism factor
func NewBatchProcessor[T, R any](transform TransformFunc[T, R], parallelism int, logger *zap.Logger) *BatchProcessor[T, R] {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &BatchProcessor[T, R]{
		transform:   transform,
		parallelism: parallelism,
		logger:      logger,
	}
}

// ItemError reports a per-item failure from the sequential pass
type ItemError struct {
	Index int
	Err   error
}

// Result is the outcome of processing one batch
type Result[R any] struct {
	Items      []R
	Errors     []ItemError
	FellBack   bool
	Sequential bool
}

// Process transforms items, parallel first, sequential on any failure.
// The returned item order always matches the input order.
func (p *BatchProcessor[T, R]) Process(ctx context.Context, items []T) (Result[R], error) {
	if len(items) == 0 {
		return Result[R]{}, nil
	}
	if len(items) <= 1 || p.parallelism == 1 {
		return p.processSequential(ctx, items, false)
	}

	results, err := p.processParallel(ctx, items)
	if err == nil {
		return Result[R]{Items: results}, nil
	}
	if ctx.Err() != nil {
		return Result[R]{}, ctx.Err()
	}

	p.logger.Warn("Parallel batch pass failed; falling back to sequential processing",
		zap.Error(err),
		zap.Int("items", len(items)),
	)
	return p.processSequential(ctx, items, true)
}

// processParallel partitions the input across the worker pool. The first
// error cancels the remaining work and fails the whole pass.
func (p *BatchProcessor[T, R]) processParallel(ctx context.Context, items []T) ([]R, error) {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]R, len(items))
	sublists := partition(len(items), p.parallelism)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, sub := range sublists {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if workerCtx.Err() != nil {
					return
				}
				out, err := p.transform(workerCtx, items[i])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				results[i] = out
			}
		}(sub[0], sub[1])
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// processSequential maps every item in order, collecting per-item errors
// instead of aborting.
func (p *BatchProcessor[T, R]) processSequential(ctx context.Context, items []T, fellBack bool) (Result[R], error) {
	result := Result[R]{
		Items:      make([]R, 0, len(items)),
		FellBack:   fellBack,
		Sequential: true,
	}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return Result[R]{}, err
		}
		out, err := p.transform(ctx, item)
		if err != nil {
			result.Errors = append(result.Errors, ItemError{Index: i, Err: err})
			var zero R
			out = zero
		}
		result.Items = append(result.Items, out)
	}
	return result, nil
}

// partition splits [0, n) into at most k contiguous [start, end) ranges
func partition(n, k int) [][2]int {
	if k > n {
		k = n
	}
	size := n / k
	rem := n % k

	var ranges [][2]int
	start := 0
	for i := 0; i < k; i++ {
		end := start + size
		if i < rem {
			end++
		}
		ranges = append(ranges, [2]int{start, end})
		start = end
	}
	return ranges
}
