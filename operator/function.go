package operator

import (
	"github.com/notargets/gocca"

	"github.com/agencyenterprise/stride/interp"
)

// Function is a discretized-function declaration handed to the stencil
// compiler: the buffer geometry and discretization orders of one named
// field, together with the device memory backing it. The compiler treats the
// declaration as opaque data; this package never inspects kernel internals.
type Function struct {
	Name string
	// Shape is the padded spatial shape of one snapshot, halo included.
	Shape      []int
	SpaceOrder int
	TimeOrder  int

	// Save is the number of buffered time slots: TimeOrder+1 for ordinary
	// time functions, the decimated window size for undersampled ones, the
	// extended time count for sparse functions, 1 for static fields.
	Save int

	// Num is the sparse point count; 0 for dense fields.
	Num int
	// Placement carries precomputed off-grid interpolation data for sparse
	// functions declared with Hicks interpolation.
	Placement *interp.Placement

	// Memory is the device buffer. Sparse Hicks functions additionally own
	// one coefficient buffer per axis plus the gridpoint buffer.
	Memory *gocca.OCCAMemory
	aux    []*gocca.OCCAMemory
}

// Elements returns the number of values in one time slot of the buffer.
func (f *Function) Elements() int {
	if f.Num > 0 {
		return f.Num
	}
	n := 1
	for _, s := range f.Shape {
		n *= s
	}
	return n
}

// Free releases the device buffers backing the declaration. Safe on a nil
// receiver and on declarations without device memory.
func (f *Function) Free() {
	if f == nil {
		return
	}
	if f.Memory != nil {
		f.Memory.Free()
		f.Memory = nil
	}
	for _, mem := range f.aux {
		mem.Free()
	}
	f.aux = nil
}
