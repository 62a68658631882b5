// Package tuple provides a small fixed-arity container, the Go analogue of a
// Python tuple. The serializer tags values of this type so that reconstruction
// preserves arity instead of treating them as an ordinary slice.
package tuple

// Tuple is an ordered, fixed-arity sequence of heterogeneous elements.
type Tuple []any

// New builds a Tuple from the given elements.
func New(elems ...any) Tuple {
	t := make(Tuple, len(elems))
	copy(t, elems)
	return t
}

// Len returns the tuple's arity.
func (t Tuple) Len() int {
	return len(t)
}
