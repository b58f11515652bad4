// Package provider defines the request/response provider abstraction and
// the middleware that wraps it.
//
// A RequestResponse[I, O] takes one input and returns one output. Retrieval
// functions become providers with Func, and an intersection combinator is
// itself a RequestResponse[I, []T], so the same middleware applies to a single
// source and to the composed operation:
//
//	lookup := provider.Func("by-team", byTeam)
//	wrapped := provider.Chain(
//	    provider.WithLogging[Query, []User](log),
//	    provider.WithMetrics[Query, []User](metrics),
//	    provider.WithTracing[Query, []User]("users"),
//	)(lookup)
//
// WithResilience adds retry and concurrency limiting around a provider.
package provider
