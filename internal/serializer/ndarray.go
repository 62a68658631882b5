package serializer

import (
	"reflect"

	"gonum.org/v1/gonum/mat"
)

// isNdarray reports whether v is the Go analogue of a numpy.ndarray: a dense
// numeric matrix backed by gonum.org/v1/gonum/mat. gonum is the one
// numerical-computing dependency present anywhere in the example corpus
// (luxfi-consensus's go.mod), and mat.Dense is the idiomatic Go stand-in for
// a fixed-shape numeric buffer.
func isNdarray(v reflect.Value) bool {
	if !v.IsValid() || !v.CanInterface() {
		return false
	}
	_, ok := v.Interface().(*mat.Dense)
	return ok
}

// ndarrayShapeAndData flattens a *mat.Dense into (rows, cols, data), fixing
// the distilled spec's open question about the original implementation
// losing shape information by materializing only the raw buffer.
func ndarrayShapeAndData(d *mat.Dense) (rows, cols int, data []float64) {
	rows, cols = d.Dims()
	raw := d.RawMatrix()
	data = make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, raw.Data[i*raw.Stride:i*raw.Stride+cols]...)
	}
	return rows, cols, data
}

// rebuildNdarray is the fixed constructor used for the ndarray special case:
// it never consults the original library's own (non-portable) reducer, it
// only consumes the (rows, cols, data) triple recorded during dumping.
func rebuildNdarray(rows, cols int, data []float64) *mat.Dense {
	return mat.NewDense(rows, cols, data)
}
