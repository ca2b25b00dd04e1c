package grid

// Helpers shared by the spatial and temporal grids. Generated coordinate
// arrays are float32 throughout: the stencil compiler consumes float32
// buffers and downstream datasets depend on the single-precision values.

// Float returns a pointer to v, for filling optional config fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for filling optional config fields.
func Int(v int) *int { return &v }

// linspace32 places num evenly spaced samples over [start, stop], endpoint
// included, truncated to float32.
func linspace32(start, stop float64, num int) []float32 {
	out := make([]float32, num)
	if num == 1 {
		out[0] = float32(start)
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = float32(start + float64(i)*step)
	}
	out[num-1] = float32(stop)
	return out
}

func prod(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// rowMajorStrides returns the flat-index stride of each axis for an array of
// the given shape stored in row-major order.
func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for d := len(shape) - 1; d >= 0; d-- {
		strides[d] = stride
		stride *= shape[d]
	}
	return strides
}

// meshgrid32 expands per-axis coordinate vectors into len(axes) flattened
// arrays of length prod(len(axes[d])). With ij=true the output follows
// matrix ordering, where axis d varies with the d-th index. With ij=false
// the first two axes are swapped (Cartesian ordering), matching the
// reference convention for index meshes.
func meshgrid32(axes [][]float32, ij bool) [][]float32 {
	dim := len(axes)
	shape := make([]int, dim)
	for d, ax := range axes {
		shape[d] = len(ax)
	}
	axisOf := axisOrder(dim, ij)

	total := prod(shape)
	out := make([][]float32, dim)
	for d := range out {
		out[d] = make([]float32, total)
	}

	outShape := make([]int, dim)
	for d := range shape {
		outShape[d] = shape[axisOf[d]]
	}
	strides := rowMajorStrides(outShape)

	for flat := 0; flat < total; flat++ {
		for pos := 0; pos < dim; pos++ {
			idx := (flat / strides[pos]) % outShape[pos]
			d := axisOf[pos]
			out[d][flat] = axes[d][idx]
		}
	}
	return out
}

// meshgridInts is meshgrid32 over integer index vectors.
func meshgridInts(axes [][]int, ij bool) [][]int {
	dim := len(axes)
	shape := make([]int, dim)
	for d, ax := range axes {
		shape[d] = len(ax)
	}
	axisOf := axisOrder(dim, ij)

	total := prod(shape)
	out := make([][]int, dim)
	for d := range out {
		out[d] = make([]int, total)
	}

	outShape := make([]int, dim)
	for d := range shape {
		outShape[d] = shape[axisOf[d]]
	}
	strides := rowMajorStrides(outShape)

	for flat := 0; flat < total; flat++ {
		for pos := 0; pos < dim; pos++ {
			idx := (flat / strides[pos]) % outShape[pos]
			d := axisOf[pos]
			out[d][flat] = axes[d][idx]
		}
	}
	return out
}

// axisOrder maps output-array position to source axis. Cartesian ordering
// swaps the first two axes when dim >= 2.
func axisOrder(dim int, ij bool) []int {
	order := make([]int, dim)
	for d := range order {
		order[d] = d
	}
	if !ij && dim >= 2 {
		order[0], order[1] = 1, 0
	}
	return order
}

func intRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
