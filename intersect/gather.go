package intersect

import (
	"context"

	"github.com/kbukum/consensus/resilience"
)

type outcome[T any] struct {
	index int
	items []T
	err   error
}

// gather invokes every source with input concurrently and returns the
// results in source order. It returns on the first failure, together with
// the index of the failing source (-1 when ctx ended first), and cancels the
// context of every source still running.
func (c *Combinator[I, T]) gather(ctx context.Context, input I) ([][]T, int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var bulkhead *resilience.Bulkhead
	if c.opts.maxConcurrency > 0 && c.opts.maxConcurrency < len(c.sources) {
		bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          c.opts.name,
			MaxConcurrent: c.opts.maxConcurrency,
		})
	}

	// Buffered so sources finishing after a failure never block.
	done := make(chan outcome[T], len(c.sources))
	for i, src := range c.sources {
		go func(i int, src Source[I, T]) {
			items, err := invoke(ctx, bulkhead, src, input)
			done <- outcome[T]{index: i, items: items, err: err}
		}(i, src)
	}

	results := make([][]T, len(c.sources))
	for range c.sources {
		select {
		case o := <-done:
			if o.err != nil {
				return nil, o.index, o.err
			}
			results[o.index] = o.items
		case <-ctx.Done():
			return nil, -1, ctx.Err()
		}
	}
	return results, -1, nil
}

func invoke[I, T any](ctx context.Context, bh *resilience.Bulkhead, src Source[I, T], input I) ([]T, error) {
	if bh == nil {
		return src(ctx, input)
	}
	return resilience.ExecuteWithResult(bh, ctx, func() ([]T, error) {
		return src(ctx, input)
	})
}
