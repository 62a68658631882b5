package serializer

import (
	"reflect"
	"sort"
)

// DictMemoryObject reifies a map as an ordered mapping from child-id (key)
// to child-id (value), per §4.2 (mapping-like provider).
type DictMemoryObject struct {
	baseMemoryObject
	Items map[ObjectID]ObjectID
	// keyOrder preserves the deterministic (sorted) iteration order used
	// while serializing, so reconstruction and the wire form are
	// reproducible across runs (§5).
	keyOrder []ObjectID
}

func newDictMemoryObject(obj reflect.Value) *DictMemoryObject {
	return &DictMemoryObject{
		baseMemoryObject: newBase(StrategyDict, obj),
		Items:            make(map[ObjectID]ObjectID),
	}
}

// Initialize serializes every key/value pair in sorted-key order, then
// reconstructs a map from the resulting ids. Comparability requires every
// serialized value to be comparable, and requires reconstruction to
// preserve the original's length (detecting key collisions introduced by a
// lossy round-trip of the keys themselves).
func (d *DictMemoryObject) Initialize(ctx *Context) {
	keys := sortedMapKeys(d.obj)
	for _, key := range keys {
		value := d.obj.MapIndex(key)
		keyID := ctx.WriteObjectToMemory(key)
		valueID := ctx.WriteObjectToMemory(value)
		d.Items[keyID] = valueID
		d.keyOrder = append(d.keyOrder, keyID)
	}

	deserialized := make(map[any]any, len(d.keyOrder))
	comparable := true
	for _, keyID := range d.keyOrder {
		valueID := d.Items[keyID]
		deserialized[ctx.mustGet(keyID)] = ctx.mustGet(valueID)
		if mo, ok := ctx.GetByID(valueID); ok && !mo.Comparable() {
			comparable = false
		}
	}
	if len(deserialized) != len(d.keyOrder) {
		comparable = false
	}

	d.finish(deserialized, comparable)
}

// sortedMapKeys returns obj's keys in a deterministic order, adapted from
// the teacher's sortMapKeys (references.go) so that a dump produced twice
// from the same map is byte-for-byte identical.
func sortedMapKeys(obj reflect.Value) []reflect.Value {
	keys := obj.MapKeys()
	if len(keys) == 0 {
		return keys
	}
	switch keys[0].Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	case reflect.Float32, reflect.Float64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Float() < keys[j].Float() })
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	default:
		sort.Slice(keys, func(i, j int) bool { return getRepr(keys[i]) < getRepr(keys[j]) })
	}
	return keys
}
