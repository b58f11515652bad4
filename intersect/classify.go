package intersect

import (
	"reflect"
	"strings"
	"sync"
)

// Class is the equality class of an item.
type Class int

const (
	// ClassPlain items compare by deep value equality.
	ClassPlain Class = iota
	// ClassIdentified items compare by identifier only.
	ClassIdentified
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassIdentified:
		return "identified"
	case ClassPlain:
		return "plain"
	default:
		return "unknown"
	}
}

// Identifier is implemented by items that expose a stable identifier.
type Identifier interface {
	GetID() string
}

// idAttribute is the map key and json tag name that marks an identifier.
const idAttribute = "id"

// Classify reports the class of item. For identified items the second
// result is the identifier value; for plain items it is nil.
//
// Identification is checked in this order: nil values are plain; an
// Identifier is identified by GetID; a string-keyed map is identified by its
// "id" entry; a struct (or pointer to one) is identified by an exported field
// tagged `json:"id"` or named ID. The identifier must be a string or numeric
// scalar, otherwise the item is plain.
func Classify(item any) (Class, any) {
	if item == nil {
		return ClassPlain, nil
	}
	v := reflect.ValueOf(item)
	if isNilable(v.Kind()) && v.IsNil() {
		return ClassPlain, nil
	}
	if idr, ok := item.(Identifier); ok {
		return ClassIdentified, idr.GetID()
	}
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		return classifyMap(v)
	case reflect.Struct:
		return classifyStruct(v)
	default:
		return ClassPlain, nil
	}
}

func classifyMap(v reflect.Value) (Class, any) {
	keyType := v.Type().Key()
	if keyType.Kind() != reflect.String {
		return ClassPlain, nil
	}
	id := v.MapIndex(reflect.ValueOf(idAttribute).Convert(keyType))
	return identifierOf(id)
}

func classifyStruct(v reflect.Value) (Class, any) {
	index, ok := idFieldIndex(v.Type())
	if !ok {
		return ClassPlain, nil
	}
	// Promoted fields behind a nil embedded pointer are unreachable.
	id, err := v.FieldByIndexErr(index)
	if err != nil {
		return ClassPlain, nil
	}
	return identifierOf(id)
}

// identifierOf accepts v as an identifier if it holds a string or numeric scalar.
func identifierOf(v reflect.Value) (Class, any) {
	if !v.IsValid() {
		return ClassPlain, nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ClassPlain, nil
		}
		v = v.Elem()
	}
	if !isScalarKind(v.Kind()) || !v.CanInterface() {
		return ClassPlain, nil
	}
	return ClassIdentified, v.Interface()
}

var fieldIndexCache sync.Map // reflect.Type -> []int (nil when the type has no id field)

// idFieldIndex finds the identifier field of a struct type. A json "id" tag
// wins over a field named ID.
func idFieldIndex(t reflect.Type) ([]int, bool) {
	if cached, ok := fieldIndexCache.Load(t); ok {
		index := cached.([]int)
		return index, index != nil
	}

	var byTag, byName []int
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name == idAttribute && byTag == nil {
			byTag = f.Index
		}
		if f.Name == "ID" && byName == nil {
			byName = f.Index
		}
	}

	index := byTag
	if index == nil {
		index = byName
	}
	fieldIndexCache.Store(t, index)
	return index, index != nil
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
