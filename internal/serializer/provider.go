package serializer

import "reflect"

// selectStrategy runs the fixed-order provider chain from §4.2 and allocates
// the matching MemoryObject, or returns nil if nothing matched (the caller
// turns that into a NoProviderError).
func selectStrategy(v reflect.Value, ctx *Context) MemoryObject {
	if isListLike(v) {
		return newListMemoryObject(v)
	}
	if v.IsValid() && v.Kind() == reflect.Map {
		return newDictMemoryObject(v)
	}
	// *mat.Dense carries no Reduce() method of its own (it has only
	// unexported fields, so it also fails the gob round-trip hasRepr would
	// otherwise probe it with) — it has to be routed into the reduce
	// strategy directly, ahead of the hasReduce gate, rather than through
	// the Reducer interface.
	if isNdarray(v) {
		return newReduceMemoryObject(v, nil, ctx)
	}
	if reducer, ok := hasReduce(v); ok {
		return newReduceMemoryObject(v, reducer, ctx)
	}
	if hasRepr(v) {
		return newReprMemoryObject(v)
	}
	return nil
}
