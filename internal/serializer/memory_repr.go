package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"reflect"

	"github.com/snapshotrun/executor/internal/typeinfo"
)

// ReprMemoryObject reifies a value as a source-text expression, per §4.4.
type ReprMemoryObject struct {
	baseMemoryObject
	Value string
}

func newReprMemoryObject(obj reflect.Value) *ReprMemoryObject {
	return &ReprMemoryObject{
		baseMemoryObject: newBase(StrategyRepr, obj),
		Value:            getRepr(obj),
	}
}

// Initialize reconstructs the value by gob round-tripping it — the same
// gobRoundTrip that hasRepr uses as its eligibility probe, so the probe
// and the real reconstruction can never disagree. Any failure downgrades the entry to comparable=false rather than
// failing the dump.
func (r *ReprMemoryObject) Initialize(ctx *Context) {
	deserialized, err := gobRoundTrip(r.obj)
	if err != nil {
		r.finish(r.obj.Interface(), false)
		return
	}
	comparable := checkComparability(safeInterface(r.obj), deserialized)
	r.finish(deserialized, comparable)
}

func safeInterface(v reflect.Value) (out any) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return v.Interface()
}

// gobRoundTrip encodes v with encoding/gob and decodes it into a fresh value
// of the same type, returning the decoded value's boxed form.
func gobRoundTrip(v reflect.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("gob round-trip panicked: %v", r)
		}
	}()
	if !v.IsValid() {
		return nil, fmt.Errorf("invalid value")
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.EncodeValue(v); err != nil {
		return nil, err
	}
	out := reflect.New(v.Type())
	dec := gob.NewDecoder(&buf)
	if err := dec.DecodeValue(out.Elem()); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}

// reprEligibleKinds is the primitive set from §4.4: values of these kinds are
// always repr-eligible without a round-trip probe.
func reprEligibleKinds(k reflect.Kind) bool {
	switch k {
	case reflect.Invalid, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

// hasRepr is the eligibility check from §4.4: primitives are always
// eligible; everything else must survive a gob round-trip whose canonical
// text form matches the original's, the Go analogue of the "eval -> re-repr"
// probe (Go has no eval, so the round-trip itself *is* the probe).
func hasRepr(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		return true // []byte
	}
	if reprEligibleKinds(v.Kind()) {
		return true
	}
	if _, ok := v.Interface().(reflect.Type); ok {
		return true
	}
	// Containers are deliberately excluded even if they would round-trip,
	// so they go through the structural strategies instead.
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		return false
	}

	deserialized, err := gobRoundTrip(v)
	if err != nil {
		return false
	}
	reDeserialized := reflect.ValueOf(deserialized)
	return getRepr(v) == getRepr(reDeserialized)
}

// getRepr renders v as Go source text, per §4.4's generation rules.
func getRepr(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	if t, ok := v.Interface().(reflect.Type); ok {
		return typeinfo.GetKind(reflect.ValueOf(t)).QualName()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		switch {
		case math.IsNaN(f):
			return "math.NaN()"
		case math.IsInf(f, 1):
			return "math.Inf(1)"
		case math.IsInf(f, -1):
			return "math.Inf(-1)"
		default:
			return fmt.Sprintf("%v", f)
		}
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		return fmt.Sprintf("complex(%v, %v)", real(c), imag(c))
	default:
		return fmt.Sprintf("%#v", v.Interface())
	}
}
