package serializer

import (
	"fmt"
	"reflect"

	"gonum.org/v1/gonum/mat"

	"github.com/snapshotrun/executor/internal/typeinfo"
)

// ReduceMemoryObject reifies a value via the reducer protocol (§4.5).
type ReduceMemoryObject struct {
	baseMemoryObject
	Constructor typeinfo.TypeInfo
	Args        ObjectID
	State       ObjectID
	ListItems   ObjectID
	DictItems   ObjectID
	Comment     string

	// shell is the eagerly-built reconstruction target (built during
	// construction, before Initialize runs), and pendingState/* are the
	// raw slots captured from Reduce() at the same time. This two-phase
	// split is what makes cycles through reducer objects tractable: a
	// child that refers back to this value finds shell already indexed.
	shell            reflect.Value
	pendingState     any
	pendingListItems []any
	pendingDictItems map[any]any
}

func newReduceMemoryObject(obj reflect.Value, reducer Reducer, ctx *Context) *ReduceMemoryObject {
	r := &ReduceMemoryObject{baseMemoryObject: newBase(StrategyReduce, obj)}
	var result ReduceResult
	if reducer != nil {
		result = reducer.Reduce()
	}
	// reducer is nil exactly for the isNdarray(obj) case (*mat.Dense
	// implements no Reducer of its own); the switch below overwrites every
	// field of result for that case before it is used, so a zero-value
	// result here is never actually read.
	if result.Args == nil {
		result.Args = []any{}
	}

	switch {
	case isNdarray(obj):
		d := obj.Interface().(*mat.Dense)
		rows, cols, data := ndarrayShapeAndData(d)
		r.Constructor = typeinfo.TypeInfo{Module: "gonum.org/v1/gonum/mat", Kind: "NewDense"}
		r.Args = ctx.WriteObjectToMemory(reflect.ValueOf([]any{rows, cols, data}))
		result.State, result.ListItems, result.DictItems = nil, nil, nil
		r.shell = reflect.ValueOf(rebuildNdarray(rows, cols, data))

	case !result.Constructor.IsValid() && len(result.Args) == 0:
		// Reported constructor is the zero Value with no args: rewrite to
		// a bare zero-value allocation of the reducer's own type, so
		// reconstruction never depends on a registered constructor
		// function being reachable (§4.5, case 2).
		r.Constructor = typeinfo.TypeInfo{Module: "reflect", Kind: "New"}
		r.Args = ctx.WriteObjectToMemory(reflect.ValueOf([]any{r.ti.String()}))
		r.shell = reflect.New(underlyingType(obj))

	default:
		r.Constructor = typeinfo.GetConstructorKind(result.Constructor)
		r.Args = ctx.WriteObjectToMemory(reflect.ValueOf(result.Args))
		r.shell = invokeConstructor(result.Constructor, result.Args, reflect.New(underlyingType(obj)))
	}

	r.pendingState = result.State
	r.pendingListItems = result.ListItems
	r.pendingDictItems = result.DictItems
	// Missing slots default to ({}, [], {}) rather than nil, so each
	// still serializes to a concrete (empty) dict/list entry (§4.5).
	if r.pendingState == nil {
		r.pendingState = map[string]any{}
	}
	if r.pendingListItems == nil {
		r.pendingListItems = []any{}
	}
	if r.pendingDictItems == nil {
		r.pendingDictItems = map[any]any{}
	}
	// Register the shell as this entry's value before any child is
	// serialized, so a cycle back to this same value (§4.5/§4.6) resolves
	// to the same pointer rather than a nil placeholder.
	r.provisionalize(shellValue(r.shell))
	return r
}

func underlyingType(v reflect.Value) reflect.Type {
	if v.Kind() == reflect.Ptr {
		return v.Type().Elem()
	}
	return v.Type()
}

// invokeConstructor calls constructor with args, falling back to a bare
// zero-value shell if the constructor is missing or panics — reconstruction
// must never fail the dump, only downgrade comparability (§7).
func invokeConstructor(constructor reflect.Value, args []any, fallback reflect.Value) (shell reflect.Value) {
	defer func() {
		if recover() != nil {
			shell = fallback
		}
	}()
	if !constructor.IsValid() || constructor.Kind() != reflect.Func {
		return fallback
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}
	out := constructor.Call(in)
	if len(out) == 0 {
		return fallback
	}
	return out[0]
}

// Initialize applies state/listitems/dictitems to the shell built during
// construction, after all of its children have been serialized elsewhere in
// the graph.
func (r *ReduceMemoryObject) Initialize(ctx *Context) {
	r.comparable = true // protects cycles through this node (§4.5)

	r.State = ctx.WriteObjectToMemory(reflect.ValueOf(r.pendingState))
	r.ListItems = ctx.WriteObjectToMemory(reflect.ValueOf(r.pendingListItems))
	r.DictItems = ctx.WriteObjectToMemory(reflect.ValueOf(r.pendingDictItems))

	applyState(r.shell, ctx.mustGet(r.State))
	applyListItems(r.shell, ctx.mustGet(r.ListItems))
	applyDictItems(r.shell, ctx.mustGet(r.DictItems))

	deserialized := shellValue(r.shell)
	if isNdarray(r.obj) {
		r.Comment = fmt.Sprintf("%v", safeInterface(r.obj))
	}
	// Goes through domainEqual's mat.Equal carve-out (comparability.go) for
	// the ndarray case, same as any other reduce entry.
	comparable := checkComparability(safeInterface(r.obj), deserialized)
	r.finish(deserialized, comparable)
}

func shellValue(shell reflect.Value) any {
	if !shell.IsValid() {
		return nil
	}
	return shell.Interface()
}

func applyState(shell reflect.Value, state any) {
	if !shell.IsValid() || state == nil {
		return
	}
	m, ok := state.(map[string]any)
	if am, isAnyMap := state.(map[any]any); isAnyMap {
		// A dict-strategy state entry deserializes with interface keys.
		m, ok = make(map[string]any, len(am)), true
		for k, v := range am {
			if name, isString := k.(string); isString {
				m[name] = v
			}
		}
	}
	if ok {
		target := shell
		if target.Kind() == reflect.Ptr {
			target = target.Elem()
		}
		for k, v := range m {
			field := target.FieldByName(k)
			if field.IsValid() && field.CanSet() {
				setField(field, v)
			}
		}
		return
	}
	if setter, ok := shellInterface(shell).(StateSetter); ok {
		setter.SetState(state)
	}
}

// setField assigns v onto field, recovering a panic (e.g. a state value
// whose type doesn't assign to the field) so a malformed reducer downgrades
// this entry's comparability rather than taking down the whole dump (§7).
func setField(field reflect.Value, v any) {
	defer func() { recover() }()
	field.Set(reflect.ValueOf(v))
}

func applyListItems(shell reflect.Value, items any) {
	list, ok := items.([]any)
	if !ok || len(list) == 0 {
		return
	}
	if appender, ok := shellInterface(shell).(Appender); ok {
		for _, item := range list {
			appender.Append(item)
		}
	}
}

func applyDictItems(shell reflect.Value, items any) {
	m, ok := items.(map[any]any)
	if !ok || len(m) == 0 {
		return
	}
	if setter, ok := shellInterface(shell).(ItemSetter); ok {
		for k, v := range m {
			setter.SetItem(k, v)
		}
	}
}

func shellInterface(shell reflect.Value) any {
	if !shell.IsValid() || !shell.CanInterface() {
		return nil
	}
	return shell.Interface()
}
