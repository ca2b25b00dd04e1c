package grid

import (
	"fmt"
	"math"
	"sync"
)

// Slice is a half-open index range [Start, Stop) along one axis.
type Slice struct {
	Start int
	Stop  int
}

// Space defines the spatial grid over which a problem is discretized.
//
// The grid consists of an inner domain of size Shape surrounded by Extra
// padding cells on each side of every axis. Within that padding, the
// outermost Absorbing cells per axis form the absorbing boundary layer.
// Spacing is the per-axis cell size in metres.
//
// All derived geometry is computed at construction and immutable for the
// lifetime of the object. Coordinate views (Grid, Mesh, ...) are computed
// lazily on first access and cached.
type Space struct {
	Dim       int
	Shape     []int
	Spacing   []float64
	Extra     []int
	Absorbing []int

	Origin        []float64
	PMLOrigin     []float64
	ExtendedShape []int
	Limit         []float64
	ExtendedLimit []float64

	gridOnce    sync.Once
	grid        [][]float32
	extGridOnce sync.Once
	extGrid     [][]float32

	meshOnce    sync.Once
	mesh        [][]float32
	extMeshOnce sync.Once
	extMesh     [][]float32

	meshIdxOnce    sync.Once
	meshIdx        [][]int
	extMeshIdxOnce sync.Once
	extMeshIdx     [][]int
}

// NewSpace constructs a spatial grid. A single spacing value is broadcast
// across all axes. Nil extra or absorbing default to zeros. Absorbing widths
// may not exceed the corresponding extra padding.
func NewSpace(shape []int, spacing []float64, extra, absorbing []int) (*Space, error) {
	dim := len(shape)
	if dim < 1 {
		return nil, fmt.Errorf("space: empty shape: %w", ErrConfiguration)
	}

	if len(spacing) == 1 && dim > 1 {
		s := spacing[0]
		spacing = make([]float64, dim)
		for d := range spacing {
			spacing[d] = s
		}
	}
	if len(spacing) != dim {
		return nil, fmt.Errorf("space: %d spacing values for %d axes: %w", len(spacing), dim, ErrConfiguration)
	}
	if extra == nil {
		extra = make([]int, dim)
	}
	if absorbing == nil {
		absorbing = make([]int, dim)
	}
	if len(extra) != dim || len(absorbing) != dim {
		return nil, fmt.Errorf("space: extra/absorbing length does not match shape: %w", ErrConfiguration)
	}

	for d := 0; d < dim; d++ {
		if shape[d] < 1 {
			return nil, fmt.Errorf("space: shape[%d]=%d must be positive: %w", d, shape[d], ErrConfiguration)
		}
		if spacing[d] <= 0 {
			return nil, fmt.Errorf("space: spacing[%d]=%g must be positive: %w", d, spacing[d], ErrConfiguration)
		}
		if extra[d] < 0 || absorbing[d] < 0 {
			return nil, fmt.Errorf("space: negative padding on axis %d: %w", d, ErrConfiguration)
		}
		if absorbing[d] > extra[d] {
			return nil, fmt.Errorf("space: absorbing[%d]=%d exceeds extra[%d]=%d: %w",
				d, absorbing[d], d, extra[d], ErrConfiguration)
		}
	}

	s := &Space{
		Dim:           dim,
		Shape:         append([]int(nil), shape...),
		Spacing:       append([]float64(nil), spacing...),
		Extra:         append([]int(nil), extra...),
		Absorbing:     append([]int(nil), absorbing...),
		Origin:        make([]float64, dim),
		PMLOrigin:     make([]float64, dim),
		ExtendedShape: make([]int, dim),
		Limit:         make([]float64, dim),
		ExtendedLimit: make([]float64, dim),
	}
	for d := 0; d < dim; d++ {
		s.PMLOrigin[d] = s.Origin[d] - spacing[d]*float64(extra[d])
		s.ExtendedShape[d] = shape[d] + 2*extra[d]
		s.Limit[d] = spacing[d] * float64(shape[d]-1)
		s.ExtendedLimit[d] = s.PMLOrigin[d] + spacing[d]*float64(s.ExtendedShape[d]-1)
	}
	return s, nil
}

// Size is an alias for the inner-domain limit.
func (s *Space) Size() []float64 { return s.Limit }

// ExtendedSize is an alias for the extended-domain limit.
func (s *Space) ExtendedSize() []float64 { return s.ExtendedLimit }

// Resample derives a new Space at a different spacing, keeping the physical
// extent of the inner domain. When extra or absorbing are nil they are
// rescaled from the current values by the spacing ratio. The rescaling is
// best-effort: it can differ by one cell from a from-scratch construction at
// the target spacing, and is kept as-is for parity with existing datasets.
func (s *Space) Resample(spacing []float64, extra, absorbing []int) (*Space, error) {
	if len(spacing) == 1 && s.Dim > 1 {
		v := spacing[0]
		spacing = make([]float64, s.Dim)
		for d := range spacing {
			spacing[d] = v
		}
	}
	if len(spacing) != s.Dim {
		return nil, fmt.Errorf("space: %d spacing values for %d axes: %w", len(spacing), s.Dim, ErrConfiguration)
	}

	shape := make([]int, s.Dim)
	for d := 0; d < s.Dim; d++ {
		shape[d] = int(math.Round(s.Limit[d]/spacing[d])) + 1
	}

	if extra == nil {
		extra = make([]int, s.Dim)
		for d := 0; d < s.Dim; d++ {
			extra[d] = int(s.Spacing[d]*float64(s.Extra[d]-1)/spacing[d] + 1)
		}
	}
	if absorbing == nil {
		absorbing = make([]int, s.Dim)
		for d := 0; d < s.Dim; d++ {
			absorbing[d] = int(s.Spacing[d]*float64(s.Absorbing[d]-1)/spacing[d] + 1)
		}
	}

	return NewSpace(shape, spacing, extra, absorbing)
}

// Inner returns the per-axis slices selecting the inner domain within the
// extended domain.
func (s *Space) Inner() []Slice {
	inner := make([]Slice, s.Dim)
	for d := 0; d < s.Dim; d++ {
		inner[d] = Slice{Start: s.Extra[d], Stop: s.Extra[d] + s.Shape[d]}
	}
	return inner
}

// InnerMask returns a flattened row-major array of the extended shape with
// gridpoints inside the inner domain set to 1 and all others to 0.
func (s *Space) InnerMask() []float32 {
	mask := make([]float32, prod(s.ExtendedShape))
	strides := rowMajorStrides(s.ExtendedShape)

	var fill func(d, off int)
	fill = func(d, off int) {
		if d == s.Dim {
			mask[off] = 1
			return
		}
		for i := s.Extra[d]; i < s.Extra[d]+s.Shape[d]; i++ {
			fill(d+1, off+i*strides[d])
		}
	}
	fill(0, 0)
	return mask
}

// Indices returns the per-axis index vectors of the inner domain.
func (s *Space) Indices() [][]int {
	axes := make([][]int, s.Dim)
	for d := 0; d < s.Dim; d++ {
		axes[d] = intRange(s.Shape[d])
	}
	return axes
}

// ExtendedIndices returns the per-axis index vectors of the extended domain.
func (s *Space) ExtendedIndices() [][]int {
	axes := make([][]int, s.Dim)
	for d := 0; d < s.Dim; d++ {
		axes[d] = intRange(s.ExtendedShape[d])
	}
	return axes
}

// Grid returns the per-axis physical coordinates of the inner domain.
func (s *Space) Grid() [][]float32 {
	s.gridOnce.Do(func() {
		axes := make([][]float32, s.Dim)
		for d := 0; d < s.Dim; d++ {
			axes[d] = linspace32(s.Origin[d], s.Limit[d], s.Shape[d])
		}
		s.grid = axes
	})
	return s.grid
}

// ExtendedGrid returns the per-axis physical coordinates of the extended
// domain, starting at the PML origin.
func (s *Space) ExtendedGrid() [][]float32 {
	s.extGridOnce.Do(func() {
		axes := make([][]float32, s.Dim)
		for d := 0; d < s.Dim; d++ {
			axes[d] = linspace32(s.PMLOrigin[d], s.ExtendedLimit[d], s.ExtendedShape[d])
		}
		s.extGrid = axes
	})
	return s.extGrid
}

// Mesh returns the flattened coordinate mesh of the inner domain in matrix
// ("ij") ordering, one array per axis.
func (s *Space) Mesh() [][]float32 {
	s.meshOnce.Do(func() {
		s.mesh = meshgrid32(s.Grid(), true)
	})
	return s.mesh
}

// ExtendedMesh returns the flattened coordinate mesh of the extended domain
// in matrix ("ij") ordering, one array per axis.
func (s *Space) ExtendedMesh() [][]float32 {
	s.extMeshOnce.Do(func() {
		s.extMesh = meshgrid32(s.ExtendedGrid(), true)
	})
	return s.extMesh
}

// MeshIndices returns the flattened index mesh of the inner domain. The
// ordering is Cartesian (first two axes swapped), preserving the reference
// convention for index meshes.
func (s *Space) MeshIndices() [][]int {
	s.meshIdxOnce.Do(func() {
		s.meshIdx = meshgridInts(s.Indices(), false)
	})
	return s.meshIdx
}

// ExtendedMeshIndices returns the flattened index mesh of the extended
// domain, in the same Cartesian ordering as MeshIndices.
func (s *Space) ExtendedMeshIndices() [][]int {
	s.extMeshIdxOnce.Do(func() {
		s.extMeshIdx = meshgridInts(s.ExtendedIndices(), false)
	})
	return s.extMeshIdx
}
