package serializer

// CompressMemory filters ids down to those whose original value actually
// changed between two dumps of the same root taken at different points in
// time (e.g. before and after running a test), the Go analogue of the
// original's compress_memory/comparator pair. An id missing from either
// dump is silently dropped (§4.7) — it isn't part of both snapshots, so
// there is nothing to compare. An id whose entry is not comparable is kept,
// since "unchanged" can't be proven for it either way — the original's
// conservative behavior when __eq__/repr can't be trusted. Comparison uses
// each entry's original Obj(), not its reconstruction, matching the
// original comparator's use of `objects[id_].obj`.
func CompressMemory(ids []ObjectID, before, after *MemoryDump) []ObjectID {
	changed := make([]ObjectID, 0, len(ids))
	for _, id := range ids {
		afterObj, ok := after.Get(id)
		if !ok {
			continue
		}
		beforeObj, ok := before.Get(id)
		if !ok {
			continue
		}
		if !afterObj.Comparable() || !beforeObj.Comparable() {
			changed = append(changed, id)
			continue
		}
		if !checkComparability(safeInterface(beforeObj.Obj()), safeInterface(afterObj.Obj())) {
			changed = append(changed, id)
		}
	}
	return changed
}
