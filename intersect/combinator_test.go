package intersect_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/kbukum/consensus/intersect"
	"github.com/kbukum/consensus/logger"
	"github.com/kbukum/consensus/observability"
	"github.com/kbukum/consensus/provider"
)

var errBoom = errors.New("boom")

func item(id string) map[string]any { return map[string]any{"id": id} }

func static(items ...any) intersect.Source[[]string, any] {
	return intersect.Static[[]string](items...)
}

func TestExecute(t *testing.T) {
	src := intersect.Intersection(
		static(item("bar"), item("foo"), item("baz")),
		static(item("foo"), item("baz"), item("qux")),
		static(item("foo"), item("baz"), item("quux")),
	)
	got, err := src(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{item("foo"), item("baz")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExecuteOrderIgnoresCompletionOrder(t *testing.T) {
	slowFirst := func(ctx context.Context, _ []string) ([]any, error) {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []any{"b", item("y"), "a", item("x"), item("y")}, nil
	}
	fast := static("a", item("x"), "b", item("y"))

	finished := make(chan int, 3)
	track := func(i int, src intersect.Source[[]string, any]) intersect.Source[[]string, any] {
		return func(ctx context.Context, in []string) ([]any, error) {
			items, err := src(ctx, in)
			finished <- i
			return items, err
		}
	}
	c := intersect.New([]intersect.Source[[]string, any]{
		track(0, slowFirst), track(1, fast), track(2, fast),
	})

	got, err := c.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{item("y"), item("x"), "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	close(finished)
	var order []int
	for i := range finished {
		order = append(order, i)
	}
	if len(order) != 3 || order[2] != 0 {
		t.Errorf("expected the first source to finish last, finish order %v", order)
	}
}

func TestExecuteNoSources(t *testing.T) {
	got, err := intersect.Intersection[[]string, any]()(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}

func TestExecutePassesSameInput(t *testing.T) {
	input := []string{"a", "b"}
	var mu sync.Mutex
	var seen [][]string
	record := func(_ context.Context, in []string) ([]any, error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, in)
		return []any{1}, nil
	}

	c := intersect.New([]intersect.Source[[]string, any]{record, record, record})
	if _, err := c.Execute(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(seen))
	}
	for _, in := range seen {
		if &in[0] != &input[0] {
			t.Errorf("source received a different input: %v", in)
		}
	}
}

func TestExecuteFailsFast(t *testing.T) {
	cancelled := make(chan error, 1)
	slow := func(ctx context.Context, _ []string) ([]any, error) {
		select {
		case <-ctx.Done():
			cancelled <- ctx.Err()
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return []any{1}, nil
		}
	}
	failing := func(context.Context, []string) ([]any, error) { return nil, errBoom }

	c := intersect.New([]intersect.Source[[]string, any]{slow, failing, static(1)})

	start := time.Now()
	got, err := c.Execute(context.Background(), nil)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waited for the slow source: %v", elapsed)
	}

	select {
	case err := <-cancelled:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("slow source was not cancelled")
	}
}

func TestExecuteParentCancelled(t *testing.T) {
	blocked := func(ctx context.Context, _ []string) ([]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := intersect.New([]intersect.Source[[]string, any]{blocked, blocked})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Execute(ctx, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestExecuteMaxConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	src := func(context.Context, []string) ([]any, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return []any{"x"}, nil
	}

	sources := make([]intersect.Source[[]string, any], 6)
	for i := range sources {
		sources[i] = src
	}
	c := intersect.New(sources, intersect.WithMaxConcurrency(2))

	got, err := c.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"x"}) {
		t.Errorf("got %v", got)
	}
	if p := peak.Load(); p > 2 {
		t.Errorf("expected at most 2 concurrent sources, saw %d", p)
	}
}

func TestNewPanicsOnNilSource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	intersect.New([]intersect.Source[[]string, any]{static(1), nil})
}

func TestNewCopiesSources(t *testing.T) {
	sources := []intersect.Source[[]string, any]{static(1, 2), static(2, 3)}
	c := intersect.New(sources)
	sources[1] = static(9)

	got, err := c.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []any{2}) {
		t.Errorf("got %v, want [2]", got)
	}
	if c.Len() != 2 {
		t.Errorf("expected Len 2, got %d", c.Len())
	}
}

func TestNested(t *testing.T) {
	inner := intersect.Intersection(static(1, 2, 3, 4), static(4, 3, 2))
	outer := intersect.Intersection(inner, static(3, 4, 5))

	got, err := outer(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []any{3, 4}) {
		t.Errorf("got %v, want [3 4]", got)
	}
}

func TestConcurrentExecute(t *testing.T) {
	c := intersect.New([]intersect.Source[[]string, any]{
		static(item("a"), 1, item("b")),
		static(1, item("b"), item("a")),
	})
	want := []any{item("a"), item("b"), 1}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Execute(context.Background(), nil)
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- errors.New("unexpected result")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestFromProvider(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)

	numbers := provider.Func("numbers", func(_ context.Context, in []string) ([]int, error) {
		return []int{len(in), 2, 3}, nil
	})
	chained := provider.Chain(provider.WithLogging[[]string, []int](log))(numbers)

	c := intersect.New(
		[]intersect.Source[[]string, int]{
			intersect.FromProvider(chained),
			intersect.Static[[]string](3, 1),
		},
		intersect.WithName("numbers"),
	)

	// The combinator is itself a provider and takes middleware.
	var p provider.RequestResponse[[]string, []int] = c
	p = provider.WithLogging[[]string, []int](log)(p)

	got, err := p.Execute(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("got %v, want [1 3]", got)
	}
	if p.Name() != "numbers" {
		t.Errorf("expected name 'numbers', got %q", p.Name())
	}
	if !strings.Contains(buf.String(), `"provider":"numbers"`) {
		t.Errorf("expected provider log line, got %s", buf.String())
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf)
	failing := func(context.Context, []string) ([]any, error) { return nil, errBoom }

	ok := intersect.New([]intersect.Source[[]string, any]{static(1)}, intersect.WithLogger(log), intersect.WithName("ok"))
	bad := intersect.New([]intersect.Source[[]string, any]{static(1), failing}, intersect.WithLogger(log))

	ctx := logger.ContextWithRequestID(context.Background(), "req-1")
	if _, err := ok.Execute(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := bad.Execute(ctx, nil); err == nil {
		t.Fatal("expected error")
	}

	out := buf.String()
	for _, want := range []string{
		`"message":"intersection complete"`,
		`"message":"intersection failed"`,
		`"intersection":"ok"`,
		`"identified":0`,
		`"plain":1`,
		`"source":1`,
		`"request_id":"req-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := observability.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	failing := func(context.Context, []string) ([]any, error) { return nil, errBoom }

	ok := intersect.New([]intersect.Source[[]string, any]{static(1, 2), static(2)}, intersect.WithMetrics(metrics))
	bad := intersect.New([]intersect.Source[[]string, any]{failing}, intersect.WithMetrics(metrics))
	_, _ = ok.Execute(context.Background(), nil)
	_, _ = bad.Execute(context.Background(), nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	if got := sums[observability.MetricIntersectionTotal]; got != 2 {
		t.Errorf("expected 2 recorded invocations, got %d", got)
	}
	if got := sums[observability.MetricSourceErrors]; got != 1 {
		t.Errorf("expected 1 source error, got %d", got)
	}
}
