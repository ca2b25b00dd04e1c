// Package operator sits between the grid geometry and the stencil-compiler
// backend. A GridContext turns a problem's grids into the geometry, region
// and discretized-function declarations the compiler consumes, caching
// declarations by name and releasing their device buffers eagerly. An
// Operator wraps one compiled kernel returned by the backend.
package operator

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/notargets/gocca"
	"gonum.org/v1/gonum/mat"

	"github.com/agencyenterprise/stride/grid"
	"github.com/agencyenterprise/stride/interp"
	"github.com/agencyenterprise/stride/subdomain"
)

// Interpolation selects how a sparse function maps its off-grid points onto
// the grid.
type Interpolation string

const (
	// InterpLinear is the backend's built-in linear interpolation.
	InterpLinear Interpolation = "linear"
	// InterpHicks attaches precomputed windowed-sinc coefficients, more
	// accurate than linear at sub-cell positions.
	InterpHicks Interpolation = "hicks"
)

// ErrInvalidInterpolation is returned for unknown interpolation kinds.
var ErrInvalidInterpolation = errors.New(`operator: only "linear" and "hicks" interpolations are allowed`)

const dtypeSize = 4 // float32 buffers throughout

// Config holds the default discretization orders for functions declared on
// the grid, and an optional logger for backend events.
type Config struct {
	SpaceOrder int
	TimeOrder  int
	Logger     *slog.Logger
}

// Geometry is the extended-domain description handed to the stencil
// compiler together with the region list.
type Geometry struct {
	Shape  []int
	Extent []float64
	Origin []float64
}

// GridContext encapsulates the backend grid for one problem: it owns the
// geometry, the subdomain decomposition and the cache of declared
// functions. One context belongs to one solver invocation; it is not safe
// for concurrent use.
type GridContext struct {
	Device     *gocca.OCCADevice
	SpaceOrder int
	TimeOrder  int

	problem  *grid.Grid
	geometry *Geometry
	regions  []subdomain.Region

	cache  *FunctionCache
	hicks  *interp.Hicks
	logger *slog.Logger
}

// NewGridContext creates a context on the given device. A nil device is a
// programmer error and panics.
func NewGridContext(device *gocca.OCCADevice, cfg Config) *GridContext {
	if device == nil {
		panic("operator: device cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GridContext{
		Device:     device,
		SpaceOrder: cfg.SpaceOrder,
		TimeOrder:  cfg.TimeOrder,
		cache:      NewFunctionCache(),
		hicks:      interp.NewHicks(),
		logger:     logger,
	}
}

// SetProblem fixes the problem grids this context describes, computing the
// extended geometry and the PML decomposition handed to the compiler.
// The context must be rebuilt if the space or time extent changes.
func (gc *GridContext) SetProblem(g *grid.Grid) {
	gc.problem = g

	space := g.Space
	extent := make([]float64, space.Dim)
	for d := 0; d < space.Dim; d++ {
		extent[d] = space.Spacing[d] * float64(space.ExtendedShape[d]-1)
	}
	gc.geometry = &Geometry{
		Shape:  append([]int(nil), space.ExtendedShape...),
		Extent: extent,
		Origin: append([]float64(nil), space.PMLOrigin...),
	}
	gc.regions = subdomain.Decompose(space)

	gc.logger.Info("grid configured",
		"dim", space.Dim,
		"shape", space.Shape,
		"extended_shape", space.ExtendedShape,
		"regions", len(gc.regions))
}

// Geometry returns the extended-domain geometry, nil before SetProblem.
func (gc *GridContext) Geometry() *Geometry { return gc.geometry }

// Regions returns the subdomain decomposition, nil before SetProblem.
func (gc *GridContext) Regions() []subdomain.Region { return gc.regions }

// Problem returns the grids set by SetProblem.
func (gc *GridContext) Problem() *grid.Grid { return gc.problem }

// Cache exposes the function cache, mainly for release bookkeeping.
func (gc *GridContext) Cache() *FunctionCache { return gc.cache }

type declOptions struct {
	spaceOrder    int
	timeOrder     int
	reuse         bool
	coordinates   [][]float64
	interpolation Interpolation
}

// DeclOption customizes a function declaration.
type DeclOption func(*declOptions)

// WithSpaceOrder overrides the grid's default space order for one function.
func WithSpaceOrder(order int) DeclOption {
	return func(o *declOptions) { o.spaceOrder = order }
}

// WithTimeOrder overrides the grid's default time order for one function.
func WithTimeOrder(order int) DeclOption {
	return func(o *declOptions) { o.timeOrder = order }
}

// NoReuse forces a fresh declaration even when one is cached under the same
// name; the cached one is released first.
func NoReuse() DeclOption {
	return func(o *declOptions) { o.reuse = false }
}

// WithCoordinates supplies the physical positions of a sparse function's
// points, one row per point. Required for Hicks interpolation.
func WithCoordinates(coords [][]float64) DeclOption {
	return func(o *declOptions) { o.coordinates = coords }
}

// WithInterpolation selects the interpolation kind of a sparse function.
func WithInterpolation(kind Interpolation) DeclOption {
	return func(o *declOptions) { o.interpolation = kind }
}

func (gc *GridContext) options(opts []DeclOption) declOptions {
	o := declOptions{
		spaceOrder:    gc.SpaceOrder,
		timeOrder:     gc.TimeOrder,
		reuse:         true,
		interpolation: InterpLinear,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// paddedShape grows the extended shape by the function halo on every side.
func (gc *GridContext) paddedShape(spaceOrder int) []int {
	space := gc.problem.Space
	shape := make([]int, space.Dim)
	for d := 0; d < space.Dim; d++ {
		shape[d] = space.ExtendedShape[d] + 2*spaceOrder
	}
	return shape
}

func (gc *GridContext) requireProblem() {
	if gc.problem == nil {
		panic("operator: SetProblem must be called before declaring functions")
	}
}

// Function declares a static spatial field over the extended domain.
func (gc *GridContext) Function(name string, opts ...DeclOption) (*Function, error) {
	gc.requireProblem()
	o := gc.options(opts)

	return gc.cache.GetOrCreate(name, o.reuse, func() (*Function, error) {
		shape := gc.paddedShape(o.spaceOrder)
		fun := &Function{
			Name:       name,
			Shape:      shape,
			SpaceOrder: o.spaceOrder,
			Save:       1,
		}
		fun.Memory = gc.Device.Malloc(int64(fun.Elements())*dtypeSize, nil, nil)
		gc.logger.Debug("declared function", "name", name, "shape", shape)
		return fun, nil
	})
}

// TimeFunction declares a time-varying field with TimeOrder+1 buffered time
// slots.
func (gc *GridContext) TimeFunction(name string, opts ...DeclOption) (*Function, error) {
	gc.requireProblem()
	o := gc.options(opts)

	return gc.cache.GetOrCreate(name, o.reuse, func() (*Function, error) {
		return gc.newTimeFunction(name, o, o.timeOrder+1)
	})
}

// UndersampledTimeFunction declares a time-decimated field saving every
// factor-th step; its save window covers the extended time grid.
func (gc *GridContext) UndersampledTimeFunction(name string, factor int, opts ...DeclOption) (*Function, error) {
	gc.requireProblem()
	if factor < 1 {
		return nil, fmt.Errorf("operator: undersampling factor %d must be positive: %w",
			factor, grid.ErrConfiguration)
	}
	o := gc.options(opts)

	return gc.cache.GetOrCreate(name, o.reuse, func() (*Function, error) {
		save := (gc.problem.Time.ExtendedNum + factor - 1) / factor
		return gc.newTimeFunction(name, o, save)
	})
}

func (gc *GridContext) newTimeFunction(name string, o declOptions, save int) (*Function, error) {
	shape := gc.paddedShape(o.spaceOrder)
	fun := &Function{
		Name:       name,
		Shape:      shape,
		SpaceOrder: o.spaceOrder,
		TimeOrder:  o.timeOrder,
		Save:       save,
	}
	fun.Memory = gc.Device.Malloc(int64(save)*int64(fun.Elements())*dtypeSize, nil, nil)
	gc.logger.Debug("declared time function", "name", name, "shape", shape, "save", save)
	return fun, nil
}

// SparseTimeFunction declares a point (sparse) function of num points over
// the extended time grid. With Hicks interpolation the off-grid placement is
// precomputed and its gridpoint and coefficient tables are uploaded to the
// device alongside the sample buffer.
func (gc *GridContext) SparseTimeFunction(name string, num int, opts ...DeclOption) (*Function, error) {
	gc.requireProblem()
	if num < 1 {
		return nil, fmt.Errorf("operator: sparse function needs at least one point: %w", grid.ErrConfiguration)
	}
	o := gc.options(opts)

	return gc.cache.GetOrCreate(name, o.reuse, func() (*Function, error) {
		nt := gc.problem.Time.ExtendedNum

		fun := &Function{
			Name:       name,
			SpaceOrder: o.spaceOrder,
			TimeOrder:  o.timeOrder,
			Save:       nt,
			Num:        num,
		}

		switch o.interpolation {
		case InterpLinear:
			// The backend interpolates linearly on its own; only the
			// sample buffer is needed.

		case InterpHicks:
			if o.coordinates == nil {
				return nil, fmt.Errorf("operator: hicks interpolation for %q needs coordinates: %w",
					name, grid.ErrConfiguration)
			}
			placement, err := gc.hicks.Place(gc.problem.Space, o.coordinates)
			if err != nil {
				return nil, err
			}
			fun.Placement = placement

			points := make([]int32, 0, placement.Num*placement.Dim)
			for _, row := range placement.GridPoints {
				points = append(points, row...)
			}
			fun.aux = append(fun.aux,
				gc.Device.Malloc(int64(len(points))*4, unsafe.Pointer(&points[0]), nil))
			for _, coeffs := range placement.Coefficients {
				fun.aux = append(fun.aux, gc.uploadMatrix(coeffs))
			}

		default:
			return nil, fmt.Errorf("%w: got %q", ErrInvalidInterpolation, o.interpolation)
		}

		fun.Memory = gc.Device.Malloc(int64(nt)*int64(num)*dtypeSize, nil, nil)
		gc.logger.Debug("declared sparse time function",
			"name", name, "num", num, "nt", nt, "interpolation", string(o.interpolation))
		return fun, nil
	})
}

// Deallocate drops the declaration stored under name and frees its device
// buffers immediately. Unknown names are ignored.
func (gc *GridContext) Deallocate(name string) {
	gc.cache.Release(name)
}

// Free releases every declaration owned by the context.
func (gc *GridContext) Free() {
	gc.cache.Clear()
}

// WithHalo pads a flattened row-major array of the extended shape with the
// grid's space-order halo on every side, replicating edge values.
func (gc *GridContext) WithHalo(data []float32) []float32 {
	gc.requireProblem()
	return padEdge(data, gc.problem.Space.ExtendedShape, gc.SpaceOrder)
}

// padEdge edge-pads a flattened row-major array by pad cells per side.
func padEdge(data []float32, shape []int, pad int) []float32 {
	dim := len(shape)
	outShape := make([]int, dim)
	for d := range shape {
		outShape[d] = shape[d] + 2*pad
	}

	inStrides := make([]int, dim)
	outStrides := make([]int, dim)
	stride := 1
	for d := dim - 1; d >= 0; d-- {
		inStrides[d] = stride
		stride *= shape[d]
	}
	stride = 1
	for d := dim - 1; d >= 0; d-- {
		outStrides[d] = stride
		stride *= outShape[d]
	}

	out := make([]float32, stride)
	for flat := range out {
		src := 0
		for d := 0; d < dim; d++ {
			i := (flat/outStrides[d])%outShape[d] - pad
			if i < 0 {
				i = 0
			} else if i >= shape[d] {
				i = shape[d] - 1
			}
			src += i * inStrides[d]
		}
		out[flat] = data[src]
	}
	return out
}

// uploadMatrix copies a matrix to the device in column-major float32 form,
// the layout compiled kernels index.
func (gc *GridContext) uploadMatrix(m mat.Matrix) *gocca.OCCAMemory {
	rows, cols := m.Dims()
	transposed := make([]float32, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			transposed[j*rows+i] = float32(m.At(i, j))
		}
	}
	return gc.Device.Malloc(int64(len(transposed))*dtypeSize, unsafe.Pointer(&transposed[0]), nil)
}
