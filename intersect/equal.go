package intersect

import "reflect"

// Equal reports whether a and b are the same item. Identified items are equal
// when their identifiers are equal; plain items when they are deeply equal.
// Items of different classes are never equal.
func Equal(a, b any) bool {
	return describe(a).matches(describe(b))
}

// entry is an item prepared for membership checks.
type entry struct {
	class Class
	// key is the identifier for identified items and the value itself for
	// hashable plain items.
	key      any
	hashable bool
	value    any
}

func describe(item any) entry {
	class, id := Classify(item)
	if class == ClassIdentified {
		return entry{class: class, key: id, hashable: true, value: item}
	}
	if item == nil || isBasicKind(reflect.TypeOf(item).Kind()) {
		return entry{class: ClassPlain, key: item, hashable: true, value: item}
	}
	return entry{class: ClassPlain, value: item}
}

// isBasicKind reports kinds whose values are safe map keys and whose ==
// agrees with reflect.DeepEqual.
func isBasicKind(k reflect.Kind) bool {
	return isScalarKind(k) || k == reflect.Bool || k == reflect.Complex64 || k == reflect.Complex128
}

func (e entry) matches(other entry) bool {
	if e.class != other.class {
		return false
	}
	if e.class == ClassIdentified {
		return e.key == other.key
	}
	return reflect.DeepEqual(e.value, other.value)
}

// catalog indexes the items of one sequence for membership checks.
type catalog struct {
	ids   map[any]struct{}
	plain map[any]struct{}
	deep  []any
}

func newCatalog[T any](items []T) *catalog {
	c := &catalog{
		ids:   make(map[any]struct{}),
		plain: make(map[any]struct{}),
	}
	for _, item := range items {
		c.insert(describe(item))
	}
	return c
}

func (c *catalog) insert(e entry) {
	switch {
	case e.class == ClassIdentified:
		c.ids[e.key] = struct{}{}
	case e.hashable:
		c.plain[e.key] = struct{}{}
	default:
		c.deep = append(c.deep, e.value)
	}
}

func (c *catalog) contains(e entry) bool {
	switch {
	case e.class == ClassIdentified:
		_, ok := c.ids[e.key]
		return ok
	case e.hashable:
		_, ok := c.plain[e.key]
		return ok
	}
	for _, v := range c.deep {
		if reflect.DeepEqual(v, e.value) {
			return true
		}
	}
	return false
}
