package serializer

import (
	"reflect"

	"gonum.org/v1/gonum/mat"
)

// domainEqual is the comparability rule from §4.3: reflect.DeepEqual, except
// dense numeric matrices (the Go analogue of numpy.ndarray) compare by shape
// and element equality via mat.Equal rather than struct-field equality
// (comparing two *mat.Dense with DeepEqual would also compare unrelated
// internal capacity bookkeeping).
func domainEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	am, aok := a.(mat.Matrix)
	bm, bok := b.(mat.Matrix)
	if aok && bok {
		return mat.Equal(am, bm)
	}
	return reflect.DeepEqual(a, b)
}

// checkComparability applies domainEqual, squashing any panic raised by
// exotic Equal/Compare implementations to false, matching the original's
// "exceptions squashed to false" rule.
func checkComparability(a, b any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return domainEqual(a, b)
}
