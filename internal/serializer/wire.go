package serializer

import (
	"encoding/json"

	"github.com/snapshotrun/executor/internal/typeinfo"
)

// wireTypeInfo is the (module, kind) projection used on the wire.
type wireTypeInfo struct {
	Module string `json:"module"`
	Kind   string `json:"kind"`
}

func projectTypeInfo(ti typeinfo.TypeInfo) wireTypeInfo {
	return wireTypeInfo{Module: ti.Module, Kind: ti.Kind}
}

// wireEntry is the common envelope for every strategy's wire form. Strategy
// and TypeInfo are shared; the remaining fields carry the strategy-specific
// payload, filled in by projectEntry below. The live obj/deserializedObj
// fields never appear here — wireEntry is built fresh from each
// MemoryObject's exported, already-serialized data, not by tagging the live
// struct.
type wireEntry struct {
	Strategy    Strategy     `json:"strategy"`
	TypeInfo    wireTypeInfo `json:"typeinfo"`
	Comparable  bool         `json:"comparable"`
	Draft       bool         `json:"draft"`
	Value       string       `json:"value,omitempty"`
	Items       []ObjectID   `json:"items,omitempty"`
	DictItems   map[string]string `json:"dict_items,omitempty"`
	DictOrder   []string          `json:"dict_order,omitempty"`
	Constructor *wireTypeInfo     `json:"constructor,omitempty"`
	Args        ObjectID          `json:"args,omitempty"`
	State       ObjectID          `json:"state,omitempty"`
	ListItems   ObjectID          `json:"list_items,omitempty"`
	ReduceDict  ObjectID          `json:"reduce_dict_items,omitempty"`
	Comment     string            `json:"comment,omitempty"`
}

func projectEntry(mo MemoryObject) wireEntry {
	entry := wireEntry{
		Strategy:   mo.Strategy(),
		TypeInfo:   projectTypeInfo(mo.TypeInfo()),
		Comparable: mo.Comparable(),
		Draft:      mo.IsDraft(),
	}
	switch v := mo.(type) {
	case *ReprMemoryObject:
		entry.Value = v.Value
	case *ListMemoryObject:
		entry.Items = v.Items
	case *DictMemoryObject:
		entry.DictItems = make(map[string]string, len(v.Items))
		for k, val := range v.Items {
			entry.DictItems[string(k)] = string(val)
		}
		for _, k := range v.keyOrder {
			entry.DictOrder = append(entry.DictOrder, string(k))
		}
	case *ReduceMemoryObject:
		ctor := projectTypeInfo(v.Constructor)
		entry.Constructor = &ctor
		entry.Args = v.Args
		entry.State = v.State
		entry.ListItems = v.ListItems
		entry.ReduceDict = v.DictItems
		entry.Comment = v.Comment
	}
	return entry
}

// EncodeDump projects dump to the wire mapping described in §6: a JSON object
// keyed by ObjectID, with the live obj/deserializedObj fields excluded by
// construction (wireEntry never holds a reflect.Value).
func EncodeDump(dump *MemoryDump) ([]byte, error) {
	out := make(map[ObjectID]wireEntry, dump.Len())
	for _, id := range dump.IDs() {
		mo, _ := dump.Get(id)
		out[id] = projectEntry(mo)
	}
	return json.Marshal(out)
}
