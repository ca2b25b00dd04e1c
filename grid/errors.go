package grid

import "errors"

var (
	// ErrConfiguration indicates an inconsistent or incomplete set of grid
	// parameters. Construction fails immediately; the caller must fix the
	// inputs, retrying cannot succeed.
	ErrConfiguration = errors.New("grid: inconsistent configuration")

	// ErrUnsupported indicates an operation that is deliberately rejected
	// rather than approximated, such as resampling a time grid.
	ErrUnsupported = errors.New("grid: operation not supported")
)
