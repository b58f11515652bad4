// Package resilience provides concurrency limiting and retry primitives.
//
//   - Bulkhead bounds how many calls run at once. The intersection
//     combinator uses one per invocation to cap its fan-out.
//   - Retry re-runs a failing call with exponential backoff and jitter.
//     It is meant for wrapping individual sources (see
//     provider.WithResilience); an intersection itself never retries.
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "lookups", MaxConcurrent: 4})
//	items, err := resilience.ExecuteWithResult(bh, ctx, func() ([]Item, error) {
//	    return lookup(ctx, q)
//	})
package resilience
