package serializer

import (
	"reflect"
	"sync"
)

// Context is a serialization session: a memory dump and the visit set used
// to detect cycles while filling it. It is deliberately a scoped object
// rather than the process-wide singleton the original used (see the Design
// Notes in SPEC_FULL.md) — callers that want singleton behavior use Default.
type Context struct {
	dump    *MemoryDump
	visited map[ObjectID]bool
	minter  idMinter
}

// NewContext returns an empty, ready-to-use Context.
func NewContext() *Context {
	return &Context{
		dump:    NewMemoryDump(),
		visited: make(map[ObjectID]bool),
	}
}

// WriteObjectToMemory serializes v, returning its id. If v's identity has
// already been visited in this session the existing id is returned
// immediately — this is the cycle-breaking step described in §4.6: the
// entry is inserted into the dump *before* Initialize recurses into its
// children, so a child that refers back to an in-progress entry finds a
// draft rather than looping forever.
func (c *Context) WriteObjectToMemory(v reflect.Value) ObjectID {
	// A value read out of an interface-typed slot (a []any element, a
	// map[string]any value) is classified by the concrete value it holds.
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	// Synthetic ids (value kinds) are unique per call, so only the
	// pointer-derived (shared) ids can ever hit the visited set below.
	id, shared := c.minter.identityOf(v)
	if shared && c.visited[id] {
		return id
	}

	mo := selectStrategy(v, c)
	if mo == nil {
		panic(&NoProviderError{Value: safeInterface(v)})
	}

	c.visited[id] = true
	c.dump.set(id, mo)
	mo.Initialize(c)
	return id
}

// GetByID returns the entry for id, if present.
func (c *Context) GetByID(id ObjectID) (MemoryObject, bool) {
	return c.dump.Get(id)
}

// Get projects id to its deserialized value.
func (c *Context) Get(id ObjectID) (any, bool) {
	mo, ok := c.dump.Get(id)
	if !ok {
		return nil, false
	}
	return mo.DeserializedObj(), true
}

func (c *Context) mustGet(id ObjectID) any {
	v, _ := c.Get(id)
	return v
}

// Clear resets the dump, discarding every entry.
func (c *Context) Clear() {
	c.dump.clear()
}

// ClearVisited resets the visit set while keeping the dump, so that
// serializing a second, independent root in the same session can still
// dedupe against shared subobjects from the first (§4.6).
func (c *Context) ClearVisited() {
	c.visited = make(map[ObjectID]bool)
}

// Dump returns the underlying MemoryDump.
func (c *Context) Dump() *MemoryDump {
	return c.dump
}

// WriteRoot serializes root (any Go value) and returns its id, recovering
// from a NoProviderError panic and surfacing it as a normal error so package
// consumers never need to deal with the core's internal panic/recover
// convention directly.
func (c *Context) WriteRoot(root any) (id ObjectID, err error) {
	defer func() {
		if r := recover(); r != nil {
			if npe, ok := r.(*NoProviderError); ok {
				err = npe
				return
			}
			panic(r)
		}
	}()
	id = c.WriteObjectToMemory(reflect.ValueOf(root))
	return id, nil
}

var (
	defaultOnce sync.Once
	defaultCtx  *Context
	defaultMu   sync.Mutex
)

// Default returns the shared package-level Context for callers that need
// singleton behavior (internal/harness builds its own Context per run),
// matching the original's process-wide PythonSerializer while keeping the
// core type itself scoped and independently testable.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = NewContext()
	})
	return defaultCtx
}

// WithDefaultLock runs fn while holding the lock guarding Default(), since
// Context itself applies no internal locking (§5).
func WithDefaultLock(fn func(*Context)) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	fn(Default())
}

// Dump is the top-level convenience matching §6's consumer contract: it
// serializes root into a fresh Context and returns both the root's id and
// the resulting dump.
func Dump(root any) (ObjectID, *MemoryDump, error) {
	ctx := NewContext()
	id, err := ctx.WriteRoot(root)
	if err != nil {
		return "", nil, err
	}
	return id, ctx.Dump(), nil
}
