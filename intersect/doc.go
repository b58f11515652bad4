// Package intersect composes several retrieval functions over the same input
// into one function that returns only the items every one of them agrees on.
//
// Each Source is invoked concurrently with the identical input. Once all
// results are in, items are split into two equality classes:
//
//   - identified items carry a stable identifier (an Identifier, a map with an
//     "id" key, or a struct with an ID field) and compare by that identifier
//     alone;
//   - plain items (numbers, strings, nil, structs without an identifier, ...)
//     compare by deep value equality with no coercion.
//
// Each class is intersected against the first source's order, duplicates
// collapsed to their first occurrence. The identified result always comes
// before the plain result.
//
// The first source failure is returned unchanged and the remaining sources
// see their context cancelled.
//
// # Usage
//
//	active := intersect.Intersection(
//	    func(ctx context.Context, q Query) ([]User, error) { return byTeam(ctx, q) },
//	    func(ctx context.Context, q Query) ([]User, error) { return byRegion(ctx, q) },
//	)
//	users, err := active(ctx, q)
//
// With options and provider middleware:
//
//	c := intersect.New(sources,
//	    intersect.WithName("eligible-users"),
//	    intersect.WithLogger(log),
//	    intersect.WithMaxConcurrency(4),
//	)
//	wrapped := provider.Chain(
//	    provider.WithTracing[Query, []User]("users"),
//	)(c)
//
// Because Source fixes both the input type I and the item type T, sources
// with mismatched signatures are rejected at compile time.
package intersect
