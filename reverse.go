package birnnclf

import (
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// ReversedIndices returns n-1, n-2, ..., 0.
func ReversedIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	return idx
}

// Reverse returns a new tensor whose elements along axis appear in reverse
// order. Every other axis is left as is and t is not modified.
func Reverse(t tensor.Tensor, axis int) (*tensor.Dense, error) {
	shp := t.Shape()
	if axis < 0 || axis >= shp.Dims() {
		return nil, shapef("reverse: axis %d out of range for shape %v", axis, shp)
	}
	return gather(t, axis, ReversedIndices(shp[axis]))
}

// gather builds out[..., i, ...] = t[..., idx[i], ...] along axis.
func gather(t tensor.Tensor, axis int, idx []int) (*tensor.Dense, error) {
	shp := t.Shape().Clone()
	if len(idx) != shp[axis] {
		return nil, shapef("gather: %d indices for axis of length %d", len(idx), shp[axis])
	}
	out := tensor.New(tensor.Of(t.Dtype()), tensor.WithShape(shp...))
	if shp.TotalSize() == 0 {
		return out, nil
	}

	dst := make([]int, len(shp))
	src := make([]int, len(shp))
	for {
		copy(src, dst)
		src[axis] = idx[dst[axis]]
		v, err := t.At(src...)
		if err != nil {
			return nil, shapef("gather: %v", err)
		}
		if err := out.SetAt(v, dst...); err != nil {
			return nil, shapef("gather: %v", err)
		}

		// odometer over the coordinates, last axis fastest
		k := len(dst) - 1
		for ; k >= 0; k-- {
			dst[k]++
			if dst[k] < shp[k] {
				break
			}
			dst[k] = 0
		}
		if k < 0 {
			return out, nil
		}
	}
}

// reverseNodes applies the reversed index list to per-timestep graph nodes.
func reverseNodes(steps []*gorgonia.Node) []*gorgonia.Node {
	out := make([]*gorgonia.Node, len(steps))
	for i, j := range ReversedIndices(len(steps)) {
		out[i] = steps[j]
	}
	return out
}
