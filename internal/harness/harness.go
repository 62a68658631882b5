// Package harness runs user code and reports what it returned and what it
// mutated. It is the Go analogue of the original's PythonExecutor: invoke a
// callable, dump the reachable state before and after, and diff the two
// dumps to report which bindings actually changed.
package harness

import (
	"fmt"
	"reflect"

	"github.com/snapshotrun/executor/internal/serializer"
)

// Func is the user code the harness invokes: it returns a result value plus
// an error, the Go analogue of a Python callable's return value and any
// raised exception.
type Func func() (any, error)

// Result is what Run reports back to a caller (internal/listener, in
// practice): the return value's dump id, the post-state's dump id, the
// full dump both live in, and which ids changed between the pre- and
// post-call snapshots of state.
type Result struct {
	Panicked    bool
	PanicValue  any
	Err         error
	ResultID    serializer.ObjectID
	StateID     serializer.ObjectID
	Dump        *serializer.MemoryDump
	ChangedIDs  []serializer.ObjectID
}

// Run invokes fn, recovering a panic into Result.Panicked/PanicValue rather
// than letting it cross the package boundary (user code is arbitrary and
// must never take the harness process down with it). state is a pointer to
// whatever bindings fn is expected to mutate (e.g. receiver fields, shared
// globals) — it is dumped once before fn runs and once after, sharing one
// Context's dump but independent visit sets (via ClearVisited), so a
// structure that fn mutates in place still resolves to the same ObjectID in
// both passes and can be diffed with CompressMemory.
func Run(fn Func, state any) *Result {
	ctx := serializer.NewContext()

	stateBeforeID, err := ctx.WriteRoot(state)
	if err != nil {
		return &Result{Err: fmt.Errorf("harness: dumping pre-state: %w", err)}
	}
	before := ctx.Dump().Snapshot()

	result := &Result{}
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Panicked = true
				result.PanicValue = r
			}
		}()
		result.ResultID, result.Err = runFunc(ctx, fn)
	}()

	ctx.ClearVisited()
	stateAfterID, err := ctx.WriteRoot(state)
	if err != nil {
		result.Err = fmt.Errorf("harness: dumping post-state: %w", err)
		return result
	}
	after := ctx.Dump()

	result.StateID = stateAfterID
	result.Dump = after
	result.ChangedIDs = serializer.CompressMemory(after.IDs(), before, after)

	_ = stateBeforeID // same id as stateAfterID by construction; kept for callers that want it
	return result
}

func runFunc(ctx *serializer.Context, fn Func) (serializer.ObjectID, error) {
	retVal, err := fn()
	if err != nil {
		return "", err
	}
	if retVal == nil {
		return ctx.WriteObjectToMemory(reflect.ValueOf((*any)(nil)).Elem()), nil
	}
	id, dumpErr := ctx.WriteRoot(retVal)
	if dumpErr != nil {
		return "", dumpErr
	}
	return id, nil
}
