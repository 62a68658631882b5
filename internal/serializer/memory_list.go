package serializer

import (
	"reflect"

	"github.com/snapshotrun/executor/internal/pyset"
	"github.com/snapshotrun/executor/internal/tuple"
)

// ListMemoryObject reifies a slice, array, tuple.Tuple, or pyset.Set as an
// ordered sequence of child ids, per §4.2/§4.4 (list-like provider).
type ListMemoryObject struct {
	baseMemoryObject
	Items []ObjectID
}

func newListMemoryObject(obj reflect.Value) *ListMemoryObject {
	return &ListMemoryObject{
		baseMemoryObject: newBase(StrategyList, obj),
		Items:            nil,
	}
}

// Initialize serializes every element in iteration order (§5), recording
// each child's id, then reconstructs a value of the same shape from those
// ids. Comparability requires every child to be comparable.
func (l *ListMemoryObject) Initialize(ctx *Context) {
	elems := listElements(l.obj)
	for _, elem := range elems {
		id := ctx.WriteObjectToMemory(elem)
		l.Items = append(l.Items, id)
	}

	deserializedElems := make([]any, len(l.Items))
	comparable := true
	for i, id := range l.Items {
		deserializedElems[i] = ctx.mustGet(id)
		if mo, ok := ctx.GetByID(id); ok && !mo.Comparable() {
			comparable = false
		}
	}

	var deserialized any
	switch {
	case l.ti.FullName() == tupleFullName:
		deserialized = tuple.New(deserializedElems...)
	case l.ti.FullName() == setFullName:
		deserialized = pyset.New(deserializedElems...)
	default:
		deserialized = deserializedElems
	}

	l.finish(deserialized, comparable)
}

// listElements returns obj's elements in iteration order, unwrapping the
// tuple.Tuple/pyset.Set wrapper types down to their plain element slices.
func listElements(obj reflect.Value) []reflect.Value {
	if s, ok := obj.Interface().(*pyset.Set); ok {
		elems := s.Elements()
		out := make([]reflect.Value, len(elems))
		for i, e := range elems {
			out[i] = reflect.ValueOf(e)
		}
		return out
	}
	if t, ok := obj.Interface().(tuple.Tuple); ok {
		out := make([]reflect.Value, len(t))
		for i, e := range t {
			out[i] = reflect.ValueOf(e)
		}
		return out
	}
	out := make([]reflect.Value, obj.Len())
	for i := 0; i < obj.Len(); i++ {
		out[i] = obj.Index(i)
	}
	return out
}

const (
	tupleFullName = "github.com/snapshotrun/executor/internal/tuple.Tuple"
	setFullName   = "github.com/snapshotrun/executor/internal/pyset.Set"
)

// isListLike reports whether v should go through the list-strategy provider.
func isListLike(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		// A byte slice is repr-eligible and handled there instead.
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return false
		}
		return true
	}
	if _, ok := v.Interface().(*pyset.Set); ok {
		return true
	}
	if _, ok := v.Interface().(tuple.Tuple); ok {
		return true
	}
	return false
}
