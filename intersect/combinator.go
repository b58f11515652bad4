package intersect

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/consensus/logger"
	"github.com/kbukum/consensus/provider"
)

// Combinator is the composed operation built from a fixed list of sources.
// It keeps no per-invocation state and is safe for concurrent use.
type Combinator[I, T any] struct {
	sources []Source[I, T]
	opts    options
}

var _ provider.RequestResponse[any, []any] = (*Combinator[any, any])(nil)

// New builds a Combinator over sources. The slice is copied; no source is
// invoked until Execute. New panics if a source is nil.
func New[I, T any](sources []Source[I, T], opts ...Option) *Combinator[I, T] {
	for i, src := range sources {
		if src == nil {
			panic(fmt.Sprintf("intersect: nil source at index %d", i))
		}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Combinator[I, T]{
		sources: slices.Clone(sources),
		opts:    o,
	}
}

// Intersection returns a Source yielding the items common to every source.
// With no sources it always yields an empty slice.
func Intersection[I, T any](sources ...Source[I, T]) Source[I, T] {
	return New(sources).Execute
}

// Name returns the configured name.
func (c *Combinator[I, T]) Name() string { return c.opts.name }

// IsAvailable always reports true; availability belongs to the sources.
func (c *Combinator[I, T]) IsAvailable(context.Context) bool { return true }

// Len returns the number of sources.
func (c *Combinator[I, T]) Len() int { return len(c.sources) }

// Execute invokes every source with input and returns their intersection.
// The first source error is returned as is, with no partial result.
func (c *Combinator[I, T]) Execute(ctx context.Context, input I) ([]T, error) {
	if len(c.sources) == 0 {
		return []T{}, nil
	}

	start := time.Now()
	log := c.opts.log.WithContext(ctx)

	results, failed, err := c.gather(ctx, input)
	if err != nil {
		c.record(ctx, "error", 0, time.Since(start))
		if c.opts.metrics != nil && failed >= 0 {
			c.opts.metrics.RecordSourceError(ctx, c.opts.name, failed)
		}
		log.Warn("intersection failed", logger.Fields(
			"intersection", c.opts.name,
			"source", failed,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	out, identified := intersect(results)
	duration := time.Since(start)
	c.record(ctx, "ok", len(out), duration)
	log.Debug("intersection complete", logger.Fields(
		"intersection", c.opts.name,
		"sources", len(c.sources),
		"reference", len(results[0]),
		"identified", identified,
		"plain", len(out)-identified,
		logger.FieldDuration, duration.Milliseconds(),
	))
	return out, nil
}
