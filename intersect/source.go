package intersect

import (
	"context"
	"slices"

	"github.com/kbukum/consensus/provider"
)

// Source produces an ordered sequence of items for one input.
type Source[I, T any] func(ctx context.Context, input I) ([]T, error)

// FromProvider adapts a RequestResponse provider that returns a slice into a Source.
func FromProvider[I, T any](p provider.RequestResponse[I, []T]) Source[I, T] {
	return p.Execute
}

// Static returns a Source that ignores its input and yields a copy of items.
func Static[I, T any](items ...T) Source[I, T] {
	frozen := slices.Clone(items)
	return func(context.Context, I) ([]T, error) {
		return slices.Clone(frozen), nil
	}
}
