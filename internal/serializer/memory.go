package serializer

import (
	"reflect"

	"github.com/snapshotrun/executor/internal/typeinfo"
)

// Strategy names the four reconstruction schemes a value can be serialized
// with.
type Strategy string

const (
	StrategyRepr   Strategy = "repr"
	StrategyList   Strategy = "list"
	StrategyDict   Strategy = "dict"
	StrategyReduce Strategy = "reduce"
)

// MemoryObject is the per-strategy reification of a value into a dump entry.
// Every concrete strategy type embeds baseMemoryObject and implements
// Initialize, which is called exactly once, after the entry has already been
// inserted into the owning dump (so cycles through this entry resolve to a
// draft rather than recursing forever).
type MemoryObject interface {
	Strategy() Strategy
	TypeInfo() typeinfo.TypeInfo
	Obj() reflect.Value
	DeserializedObj() any
	Comparable() bool
	IsDraft() bool

	// Initialize runs the strategy-specific reconstruction logic. It is
	// called by the Context immediately after the entry is inserted into
	// the dump, and must not be called more than once.
	Initialize(ctx *Context)
}

// baseMemoryObject carries the fields common to every strategy, mirroring
// the original's MemoryObject base class.
type baseMemoryObject struct {
	strategy        Strategy
	ti              typeinfo.TypeInfo
	obj             reflect.Value
	deserializedObj any
	comparable      bool
	isDraft         bool
}

func newBase(strategy Strategy, obj reflect.Value) baseMemoryObject {
	return baseMemoryObject{
		strategy: strategy,
		ti:       typeinfo.GetKind(obj),
		obj:      obj,
		isDraft:  true,
	}
}

func (b *baseMemoryObject) Strategy() Strategy            { return b.strategy }
func (b *baseMemoryObject) TypeInfo() typeinfo.TypeInfo    { return b.ti }
func (b *baseMemoryObject) Obj() reflect.Value             { return b.obj }
func (b *baseMemoryObject) DeserializedObj() any           { return b.deserializedObj }
func (b *baseMemoryObject) Comparable() bool               { return b.comparable }
func (b *baseMemoryObject) IsDraft() bool                  { return b.isDraft }

// finish records the reconstruction outcome and clears the draft flag. It is
// the Go analogue of MemoryObject._initialize in the original.
func (b *baseMemoryObject) finish(deserialized any, comparable bool) {
	b.deserializedObj = deserialized
	b.comparable = comparable
	b.isDraft = false
}

// provisionalize exposes a not-yet-finished reconstruction target before
// Initialize runs. It exists for the reduce strategy: the shell is built
// (and a pointer to it known) before any child is serialized, so a child
// that refers back to this same value — the cycle case in §4.5/§4.6 — reads
// back the same pointer rather than a nil placeholder, and sees it fully
// populated once that child's own Initialize eventually completes.
func (b *baseMemoryObject) provisionalize(deserialized any) {
	b.deserializedObj = deserialized
}
