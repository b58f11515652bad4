package intersect

// Intersect returns the items of results[0] that are present in every other
// sequence, identified items first, then plain items. Within each class the
// order of results[0] is kept and repeated items appear once.
//
// The result is never nil.
func Intersect[T any](results ...[]T) []T {
	out, _ := intersect(results)
	return out
}

// intersect also returns how many leading items of out are identified.
func intersect[T any](results [][]T) ([]T, int) {
	out := make([]T, 0)
	if len(results) == 0 || len(results[0]) == 0 {
		return out, 0
	}

	others := make([]*catalog, 0, len(results)-1)
	for _, r := range results[1:] {
		if len(r) == 0 {
			return out, 0
		}
		others = append(others, newCatalog(r))
	}

	var identified, plain []T
	seen := newCatalog[T](nil)
	for _, item := range results[0] {
		e := describe(item)
		if seen.contains(e) {
			continue
		}
		seen.insert(e)
		if !presentInAll(others, e) {
			continue
		}
		if e.class == ClassIdentified {
			identified = append(identified, item)
		} else {
			plain = append(plain, item)
		}
	}

	out = append(out, identified...)
	return append(out, plain...), len(identified)
}

func presentInAll(catalogs []*catalog, e entry) bool {
	for _, c := range catalogs {
		if !c.contains(e) {
			return false
		}
	}
	return true
}
