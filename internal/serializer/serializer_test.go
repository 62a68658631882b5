package serializer

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/snapshotrun/executor/internal/pyset"
	"github.com/snapshotrun/executor/internal/tuple"
)

func TestDumpSortsOfIntegers(t *testing.T) {
	root := []int64{-1, 4294967297, 123, 4294967296, 4294967296, -3}
	id, dump, err := Dump(root)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, ok := dump.Get(id)
	if !ok {
		t.Fatal("root id missing from dump")
	}
	list, ok := mo.(*ListMemoryObject)
	if !ok {
		t.Fatalf("root entry is %T, want *ListMemoryObject", mo)
	}
	if len(list.Items) != len(root) {
		t.Fatalf("got %d items, want %d", len(list.Items), len(root))
	}
	if !list.Comparable() {
		t.Fatal("want comparable root")
	}
	for i, childID := range list.Items {
		child, ok := dump.Get(childID)
		if !ok {
			t.Fatalf("item %d missing its entry", i)
		}
		repr, ok := child.(*ReprMemoryObject)
		if !ok {
			t.Fatalf("item %d is %T, want *ReprMemoryObject", i, child)
		}
		want := getRepr(reflect.ValueOf(root[i]))
		if repr.Value != want {
			t.Errorf("item %d: got value %q, want %q", i, repr.Value, want)
		}
	}
}

func TestDumpEmptyList(t *testing.T) {
	id, dump, err := Dump([]int{})
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, _ := dump.Get(id)
	list := mo.(*ListMemoryObject)
	if len(list.Items) != 0 {
		t.Fatalf("got %d items, want 0", len(list.Items))
	}
	if !list.Comparable() {
		t.Fatal("want comparable empty list")
	}
}

func TestDumpDedupsSharedChild(t *testing.T) {
	x := []int{1, 2}
	root := map[string][]int{"a": x, "b": x}
	id, dump, err := Dump(root)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, _ := dump.Get(id)
	d, ok := mo.(*DictMemoryObject)
	if !ok {
		t.Fatalf("root entry is %T, want *DictMemoryObject", mo)
	}
	if len(d.Items) != 2 {
		t.Fatalf("got %d entries, want 2", len(d.Items))
	}
	if !d.Comparable() {
		t.Fatal("want comparable dict")
	}

	var valueIDs []ObjectID
	for _, keyID := range d.keyOrder {
		valueIDs = append(valueIDs, d.Items[keyID])
	}
	if len(valueIDs) != 2 {
		t.Fatalf("got %d values, want 2", len(valueIDs))
	}
	if valueIDs[0] != valueIDs[1] {
		t.Errorf("want both map values to share an id, got %q and %q", valueIDs[0], valueIDs[1])
	}
}

func TestDumpFloatEdgeValues(t *testing.T) {
	root := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0.0}
	id, dump, err := Dump(root)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, _ := dump.Get(id)
	list := mo.(*ListMemoryObject)

	nanEntry, _ := dump.Get(list.Items[0])
	if got := nanEntry.(*ReprMemoryObject).Value; got != "math.NaN()" {
		t.Errorf("NaN repr = %q, want math.NaN()", got)
	}
	if nanEntry.Comparable() {
		t.Error("want NaN entry incomparable")
	}

	for i, want := range []string{"math.Inf(1)", "math.Inf(-1)"} {
		entry, _ := dump.Get(list.Items[i+1])
		re := entry.(*ReprMemoryObject)
		if re.Value != want {
			t.Errorf("entry %d repr = %q, want %q", i+1, re.Value, want)
		}
		if !re.Comparable() {
			t.Errorf("entry %d: want comparable", i+1)
		}
	}

	zeroEntry, _ := dump.Get(list.Items[3])
	if !zeroEntry.Comparable() {
		t.Error("want 0.0 entry comparable")
	}

	// The list as a whole inherits the NaN child's incomparability.
	if list.Comparable() {
		t.Error("want root list incomparable because of the NaN child")
	}
}

type point struct {
	X int
	Y string
}

func (p *point) Reduce() ReduceResult {
	return ReduceResult{State: map[string]any{"X": p.X, "Y": p.Y}}
}

func TestDumpReducerObjectWithState(t *testing.T) {
	p := &point{X: 1, Y: "s"}
	id, dump, err := Dump(p)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, _ := dump.Get(id)
	r, ok := mo.(*ReduceMemoryObject)
	if !ok {
		t.Fatalf("root entry is %T, want *ReduceMemoryObject", mo)
	}
	if !r.Comparable() {
		t.Fatal("want comparable reduce entry")
	}
	reconstructed, ok := r.DeserializedObj().(*point)
	if !ok {
		t.Fatalf("deserialized value is %T, want *point", r.DeserializedObj())
	}
	if reconstructed.X != 1 || reconstructed.Y != "s" {
		t.Errorf("got %+v, want {X:1 Y:s}", reconstructed)
	}
}

type node struct {
	Self *node
}

func (n *node) Reduce() ReduceResult {
	return ReduceResult{State: map[string]any{"Self": n.Self}}
}

func TestDumpCycleThroughReducerObject(t *testing.T) {
	p := &node{}
	p.Self = p

	id, dump, err := Dump(p)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, _ := dump.Get(id)
	r := mo.(*ReduceMemoryObject)
	if !r.Comparable() {
		t.Fatal("want comparable cyclic entry (draft-protected)")
	}

	reconstructed, ok := r.DeserializedObj().(*node)
	if !ok {
		t.Fatalf("deserialized value is %T, want *node", r.DeserializedObj())
	}
	if reconstructed.Self != reconstructed {
		t.Error("want reconstructed.Self to be the same pointer as reconstructed")
	}
}

func TestDumpTuple(t *testing.T) {
	root := tuple.New(1, "two", 3.0)
	id, dump, err := Dump(root)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, _ := dump.Get(id)
	list := mo.(*ListMemoryObject)
	if len(list.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(list.Items))
	}
	tup, ok := list.DeserializedObj().(tuple.Tuple)
	if !ok {
		t.Fatalf("deserialized is %T, want tuple.Tuple", list.DeserializedObj())
	}
	if tup.Len() != 3 {
		t.Errorf("got arity %d, want 3", tup.Len())
	}
}

func TestDumpSet(t *testing.T) {
	root := pyset.New(1, 2, 3)
	id, dump, err := Dump(root)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, _ := dump.Get(id)
	list := mo.(*ListMemoryObject)
	s, ok := list.DeserializedObj().(*pyset.Set)
	if !ok {
		t.Fatalf("deserialized is %T, want *pyset.Set", list.DeserializedObj())
	}
	if s.Len() != 3 || !s.Contains(1) || !s.Contains(2) || !s.Contains(3) {
		t.Errorf("got %+v, want {1,2,3}", s.Elements())
	}
}

func TestClosureEveryChildIDIsAKey(t *testing.T) {
	x := []int{1, 2}
	root := map[string][]int{"a": x, "b": x}
	_, dump, err := Dump(root)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	for _, id := range dump.IDs() {
		mo, _ := dump.Get(id)
		for _, childID := range childIDsOf(mo) {
			if _, ok := dump.Get(childID); !ok {
				t.Errorf("entry %q references missing child %q", id, childID)
			}
		}
	}
}

func childIDsOf(mo MemoryObject) []ObjectID {
	switch v := mo.(type) {
	case *ListMemoryObject:
		return v.Items
	case *DictMemoryObject:
		var ids []ObjectID
		for k, val := range v.Items {
			ids = append(ids, k, val)
		}
		return ids
	case *ReduceMemoryObject:
		return []ObjectID{v.Args, v.State, v.ListItems, v.DictItems}
	default:
		return nil
	}
}

func TestIdempotentWithinOneContext(t *testing.T) {
	ctx := NewContext()
	root := []int{1, 2, 3}
	v := reflect.ValueOf(root)
	id1 := ctx.WriteObjectToMemory(v)
	before := ctx.Dump().Len()
	id2 := ctx.WriteObjectToMemory(v)
	after := ctx.Dump().Len()
	if id1 != id2 {
		t.Errorf("ids differ across repeated calls: %q vs %q", id1, id2)
	}
	if before != after {
		t.Errorf("dump grew from %d to %d on a repeat call", before, after)
	}
}

func TestDumpNdarray(t *testing.T) {
	root := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	id, dump, err := Dump(root)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	mo, ok := dump.Get(id)
	if !ok {
		t.Fatal("root id missing from dump")
	}
	r, ok := mo.(*ReduceMemoryObject)
	if !ok {
		t.Fatalf("root entry is %T, want *ReduceMemoryObject", mo)
	}
	if r.Constructor.Module != "gonum.org/v1/gonum/mat" || r.Constructor.Kind != "NewDense" {
		t.Errorf("got constructor %+v, want gonum.org/v1/gonum/mat.NewDense", r.Constructor)
	}
	if !r.Comparable() {
		t.Fatal("want comparable ndarray entry")
	}
	reconstructed, ok := r.DeserializedObj().(*mat.Dense)
	if !ok {
		t.Fatalf("deserialized value is %T, want *mat.Dense", r.DeserializedObj())
	}
	if !mat.Equal(root, reconstructed) {
		t.Errorf("got %v, want %v", reconstructed, root)
	}
}

func TestCompressMemoryUsesOriginalObjAndDropsMissingIDs(t *testing.T) {
	before := NewMemoryDump()
	after := NewMemoryDump()

	unchangedID := ObjectID("unchanged")
	changedID := ObjectID("changed")
	onlyAfterID := ObjectID("only-after")

	put := func(d *MemoryDump, id ObjectID, v int) {
		mo := newReprMemoryObject(reflect.ValueOf(v))
		mo.finish(v, true)
		d.set(id, mo)
	}
	put(before, unchangedID, 1)
	put(after, unchangedID, 1)
	put(before, changedID, 1)
	put(after, changedID, 2)
	put(after, onlyAfterID, 3) // not present in before

	changed := CompressMemory([]ObjectID{unchangedID, changedID, onlyAfterID}, before, after)

	if len(changed) != 1 || changed[0] != changedID {
		t.Fatalf("got %v, want exactly [%q] (unchanged stays out, the id missing from before is dropped, not counted as changed)", changed, changedID)
	}
}

func TestNoProviderErrorForUnsupportedValue(t *testing.T) {
	ch := make(chan int)
	_, _, err := Dump(ch)
	if err == nil {
		t.Fatal("want NoProviderError for a bare channel")
	}
	if _, ok := err.(*NoProviderError); !ok {
		t.Errorf("got %T, want *NoProviderError", err)
	}
}
