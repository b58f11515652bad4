package provider

import (
	"context"
	"reflect"

	"github.com/kbukum/consensus/observability"
)

// fanIn is implemented by providers that combine several sources, such as
// an intersection combinator.
type fanIn interface {
	Len() int
}

// WithTracing returns a Middleware that wraps each Execute call in a span
// named "{serviceName}.{providerName}". Spans of fan-in providers carry the
// source count; slice outputs record their size.
func WithTracing[I, O any](serviceName string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, serviceName: serviceName}
	}
}

type tracingRR[I, O any] struct {
	inner       RequestResponse[I, O]
	serviceName string
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.serviceName+"."+t.inner.Name())
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.serviceName)
	observability.SetSpanAttribute(ctx, observability.AttrOperationName, t.inner.Name())
	if f, ok := t.inner.(fanIn); ok {
		observability.SetSpanAttribute(ctx, observability.AttrSourceCount, f.Len())
	}

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return output, err
	}
	if n, ok := sliceLen(output); ok {
		observability.SetSpanAttribute(ctx, observability.AttrResultSize, n)
	}
	return output, nil
}

func sliceLen(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return 0, false
	}
	return rv.Len(), true
}
