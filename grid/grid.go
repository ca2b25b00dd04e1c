// Package grid computes the spatial, temporal and acquisition grids
// underlying a finite-difference wave-propagation solver. Each grid is an
// immutable value object; derived coordinate views are generated lazily and
// cached. Generated coordinate arrays are float32 for compatibility with the
// stencil-compiler backend.
package grid

// Grid groups the spatial and temporal grids of one problem. It carries no
// invariants beyond its members'.
type Grid struct {
	Space    *Space
	Time     *Time
	SlowTime *SlowTime
}

// NewGrid bundles the given grids; SlowTime may be nil.
func NewGrid(space *Space, time *Time, slowTime *SlowTime) *Grid {
	return &Grid{Space: space, Time: time, SlowTime: slowTime}
}
