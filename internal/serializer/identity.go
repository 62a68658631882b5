package serializer

import (
	"fmt"
	"reflect"
)

// ObjectID is an opaque string uniquely identifying a live value for the
// duration of a dump (the Go analogue of PythonId).
type ObjectID string

// idMinter derives ObjectIDs for values entering the serializer. Values whose
// Go representation carries a stable backing pointer (Ptr, Map, Slice, Chan,
// Func, UnsafePointer) get an id derived from that pointer, so two
// occurrences of the same backing storage collapse to the same id — this is
// the Go analogue of str(id(py_object)), grounded in the teacher's
// getValPtr/getRawKey (references.go), simplified down to "compute a stable
// key", since the elaborate union-find/definition-point machinery those
// functions fed only serves pretty-printed text output, not this dump.
type idMinter struct {
	synthetic int
}

// identityOf returns a stable ObjectID for v, and whether that id is shared
// across repeated calls for the same backing storage (true for pointer-like
// kinds; false for value kinds, which mint a fresh id per occurrence since
// Go gives no shared address for two independently-boxed struct/primitive
// copies).
func (m *idMinter) identityOf(v reflect.Value) (ObjectID, bool) {
	if !v.IsValid() {
		return "", false
	}
	if ptr, ok := pointerAddress(v); ok {
		return ObjectID(fmt.Sprintf("0x%x", ptr)), true
	}
	m.synthetic++
	return ObjectID(fmt.Sprintf("s%d", m.synthetic)), false
}

// pointerAddress extracts the backing pointer of v, if it has one.
func pointerAddress(v reflect.Value) (uintptr, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Slice:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Interface:
		if v.IsNil() {
			return 0, false
		}
		return pointerAddress(v.Elem())
	default:
		return 0, false
	}
}
