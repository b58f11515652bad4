package provider

import (
	"context"

	goerrors "github.com/kbukum/consensus/errors"
	"github.com/kbukum/consensus/resilience"
)

// ResilienceConfig bundles optional resilience policies for a provider.
// Nil fields are skipped.
type ResilienceConfig struct {
	// Retry re-runs failed calls with exponential backoff. Without a RetryIf,
	// context errors and non-retryable AppErrors stop the retries.
	Retry *resilience.RetryConfig
	// Bulkhead limits concurrent calls to the provider.
	Bulkhead *resilience.BulkheadConfig
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.Retry == nil && c.Bulkhead == nil
}

// WithResilience wraps p so each Execute runs as Bulkhead → Retry → Execute.
// An empty config returns p unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	r := &resilientRR[I, O]{inner: p}
	if cfg.Retry != nil {
		retry := *cfg.Retry
		if retry.RetryIf == nil {
			retry.RetryIf = retryable
		}
		r.retry = &retry
	}
	if cfg.Bulkhead != nil {
		bh := *cfg.Bulkhead
		if bh.Name == "" {
			bh.Name = p.Name()
		}
		r.bulkhead = resilience.NewBulkhead(bh)
	}
	return r
}

type resilientRR[I, O any] struct {
	inner    RequestResponse[I, O]
	retry    *resilience.RetryConfig
	bulkhead *resilience.Bulkhead
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	call := func() (O, error) { return r.inner.Execute(ctx, input) }
	if r.retry != nil {
		attempt := call
		call = func() (O, error) { return resilience.Retry(ctx, *r.retry, attempt) }
	}
	if r.bulkhead == nil {
		return call()
	}
	return resilience.ExecuteWithResult(r.bulkhead, ctx, call)
}

func retryable(err error) bool {
	return resilience.DefaultRetryIf(err) && goerrors.IsRetryable(err)
}
