// Package interp computes Hicks (Kaiser-windowed sinc) interpolation
// coefficients for placing point sources and receivers at sub-cell
// locations. The kernel is separable: each axis gets an independent row of
// tap weights, and an interpolated value is the tensor-product sum over all
// axes and taps.
package interp

import (
	"fmt"
	"math"

	"github.com/agencyenterprise/stride/grid"
	"github.com/notargets/gocfd/utils"
)

// Reference constants; changing them breaks numerical parity with existing
// datasets.
const (
	DefaultHalfWidth = 3
	DefaultBeta      = 4.14
)

// Hicks holds the window parameters. The zero value is not usable; call
// NewHicks for the reference configuration.
type Hicks struct {
	HalfWidth int
	Beta      float64
}

// NewHicks returns a kernel with the reference half-width and Kaiser beta.
func NewHicks() *Hicks {
	return &Hicks{HalfWidth: DefaultHalfWidth, Beta: DefaultBeta}
}

// Width returns the number of taps per axis.
func (h *Hicks) Width() int { return 2*h.HalfWidth + 1 }

// Placement holds the anchor gridpoints and tap weights for a set of
// off-grid points against a spatial grid.
type Placement struct {
	Num int
	Dim int
	// Width is the taps per axis, 2*half_width+1.
	Width int
	// GridPoints is the lower-left anchor cell of each point, in
	// extended-domain indices: round of the fractional grid coordinate
	// minus the half-width.
	GridPoints [][]int32
	// Coefficients holds one Num x Width weight matrix per axis.
	Coefficients []utils.Matrix
}

// Place computes the placement of physical coordinates (one row of
// space.Dim values per point) on the extended grid of space.
func (h *Hicks) Place(space *grid.Space, coords [][]float64) (*Placement, error) {
	num := len(coords)
	if num == 0 {
		return nil, fmt.Errorf("interp: no coordinates given")
	}
	dim := space.Dim
	for p, c := range coords {
		if len(c) != dim {
			return nil, fmt.Errorf("interp: coordinate %d has %d components, space has %d axes",
				p, len(c), dim)
		}
	}

	width := h.Width()
	extendedHalfWidth := float64(h.HalfWidth) / 0.99
	den := i0(h.Beta)

	gridpoints := make([][]int32, num)
	offsets := make([][]float64, num)
	for p := 0; p < num; p++ {
		gridpoints[p] = make([]int32, dim)
		offsets[p] = make([]float64, dim)
		for d := 0; d < dim; d++ {
			gc := (coords[p][d] - space.PMLOrigin[d]) / space.Spacing[d]
			nearest := math.RoundToEven(gc)
			gridpoints[p][d] = int32(nearest) - int32(h.HalfWidth)
			offsets[p][d] = gc - nearest
		}
	}

	coefficients := make([]utils.Matrix, dim)
	for d := 0; d < dim; d++ {
		coefficients[d] = utils.NewMatrix(num, width)
	}
	for tap := -h.HalfWidth; tap <= h.HalfWidth; tap++ {
		col := h.HalfWidth + tap
		for p := 0; p < num; p++ {
			for d := 0; d < dim; d++ {
				x := float64(tap) + offsets[p][d]
				u := (x / extendedHalfWidth) * (x / extendedHalfWidth)
				if u > 1 {
					u = 1
				}
				w := i0(h.Beta*math.Sqrt(1-u)) / den
				coefficients[d].Set(p, col, sinc(x)*w)
			}
		}
	}

	return &Placement{
		Num:          num,
		Dim:          dim,
		Width:        width,
		GridPoints:   gridpoints,
		Coefficients: coefficients,
	}, nil
}

// sinc is the normalized cardinal sine sin(pi x)/(pi x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// i0 is the zeroth-order modified Bessel function of the first kind,
// evaluated by its power series. The series converges in a handful of terms
// over the Kaiser-window argument range [0, Beta].
func i0(x float64) float64 {
	half := x / 2
	sum, term := 1.0, 1.0
	for k := 1; k < 64; k++ {
		term *= (half * half) / (float64(k) * float64(k))
		sum += term
		if term < 1e-16*sum {
			break
		}
	}
	return sum
}
