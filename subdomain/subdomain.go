// Package subdomain decomposes the extended computational domain into the
// named regions over which absorbing-boundary and interior equations are
// scoped. Regions are declarative descriptors only: the stencil compiler
// reads the per-axis selector of each region and restricts the generated
// loops accordingly. Correct wave behaviour at domain edges depends on these
// regions tiling the extended domain without gaps for every damping term.
package subdomain

import (
	"fmt"
	"strings"

	"github.com/agencyenterprise/stride/grid"
)

// Side labels one end of an axis.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Kind is the selector tag.
type Kind uint8

const (
	// KindIdentity selects the full axis extent.
	KindIdentity Kind = iota
	// KindMiddle selects [k, n-k), excluding k cells on each side.
	KindMiddle
	// KindSide selects the first or last k cells of the axis.
	KindSide
)

// Selector restricts one axis of a region. Width is the cell count for
// KindMiddle and KindSide; Side is set for KindSide only.
type Selector struct {
	Kind  Kind
	Side  Side
	Width int
}

// Identity selects the full axis extent.
func Identity() Selector { return Selector{Kind: KindIdentity} }

// MiddleOf excludes k cells on each side of the axis.
func MiddleOf(k int) Selector { return Selector{Kind: KindMiddle, Width: k} }

// SideOf selects the k cells at the given end of the axis.
func SideOf(side Side, k int) Selector { return Selector{Kind: KindSide, Side: side, Width: k} }

// Range resolves the selector against an axis of n cells.
func (s Selector) Range(n int) grid.Slice {
	switch s.Kind {
	case KindMiddle:
		return grid.Slice{Start: s.Width, Stop: n - s.Width}
	case KindSide:
		if s.Side == Left {
			return grid.Slice{Start: 0, Stop: s.Width}
		}
		return grid.Slice{Start: n - s.Width, Stop: n}
	default:
		return grid.Slice{Start: 0, Stop: n}
	}
}

func (s Selector) String() string {
	switch s.Kind {
	case KindMiddle:
		return fmt.Sprintf("middle(%d)", s.Width)
	case KindSide:
		return fmt.Sprintf("side(%s, %d)", s.Side, s.Width)
	default:
		return "identity"
	}
}

// Region is a named mapping from axis index to selector. Names are unique
// within a decomposition; the backend indexes regions by name.
type Region struct {
	Name      string
	Selectors []Selector
}

// Decompose enumerates the PML regions of a spatial grid, in a fixed order:
// the full domain, the interior, the partial regions per axis and side, the
// left then right side regions per axis, the centre regions per axis and
// side, and finally the 2^dim corners. The absorbing width of each axis
// drives the selector widths.
func Decompose(space *grid.Space) []Region {
	dim := space.Dim
	absorbing := space.Absorbing

	interiorSelectors := func() []Selector {
		sel := make([]Selector, dim)
		for d := 0; d < dim; d++ {
			sel[d] = MiddleOf(absorbing[d])
		}
		return sel
	}
	identitySelectors := func() []Selector {
		sel := make([]Selector, dim)
		for d := 0; d < dim; d++ {
			sel[d] = Identity()
		}
		return sel
	}

	regions := []Region{
		{Name: "full_domain", Selectors: identitySelectors()},
		{Name: "interior_domain", Selectors: interiorSelectors()},
	}

	// Partial regions: interior everywhere except the first axis, which
	// keeps its full extent, and the target axis, restricted to one side.
	for d := 0; d < dim; d++ {
		for _, side := range []Side{Left, Right} {
			sel := interiorSelectors()
			sel[0] = Identity()
			sel[d] = SideOf(side, absorbing[d])
			regions = append(regions, Region{
				Name:      fmt.Sprintf("pml_partial_%s%d", side, d),
				Selectors: sel,
			})
		}
	}

	for _, side := range []Side{Left, Right} {
		for d := 0; d < dim; d++ {
			sel := identitySelectors()
			sel[d] = SideOf(side, absorbing[d])
			regions = append(regions, Region{
				Name:      fmt.Sprintf("pml_side_%s%d", side, d),
				Selectors: sel,
			})
		}
	}

	for d := 0; d < dim; d++ {
		for _, side := range []Side{Left, Right} {
			sel := interiorSelectors()
			sel[d] = SideOf(side, absorbing[d])
			regions = append(regions, Region{
				Name:      fmt.Sprintf("pml_centre_%s%d", side, d),
				Selectors: sel,
			})
		}
	}

	// Corners: every left/right combination across all axes, last axis
	// varying fastest.
	for _, sides := range sideProduct(dim) {
		sel := make([]Selector, dim)
		names := make([]string, dim)
		for d := 0; d < dim; d++ {
			sel[d] = SideOf(sides[d], absorbing[d])
			names[d] = string(sides[d])
		}
		regions = append(regions, Region{
			Name:      "pml_corner_" + strings.Join(names, "_"),
			Selectors: sel,
		})
	}

	return regions
}

// Count returns the number of regions Decompose produces for a given
// dimensionality: 2 + 4*dim + 2*dim + 2^dim.
func Count(dim int) int {
	return 2 + 4*dim + 2*dim + (1 << dim)
}

func sideProduct(dim int) [][]Side {
	combos := make([][]Side, 0, 1<<dim)
	for mask := 0; mask < 1<<dim; mask++ {
		sides := make([]Side, dim)
		for d := 0; d < dim; d++ {
			if mask&(1<<(dim-1-d)) == 0 {
				sides[d] = Left
			} else {
				sides[d] = Right
			}
		}
		combos = append(combos, sides)
	}
	return combos
}
