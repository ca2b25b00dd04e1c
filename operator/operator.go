package operator

import (
	"fmt"

	"github.com/notargets/gocca"
)

// Operator wraps one compiled kernel returned by the stencil-compiler
// backend. Compilation yields an opaque callable; this type only carries it,
// its time range and its argument list.
//
// Compiled kernels take the declared buffers first and the traversed time
// range (time_m, time_M) as their final two arguments; Run appends the
// range automatically.
type Operator struct {
	Name string

	ctx    *GridContext
	kernel *gocca.OCCAKernel

	timeM    int
	timeMax  int
	timeSet  bool
	userArgs []interface{}
}

// NewOperator creates an operator bound to a grid context.
func NewOperator(ctx *GridContext, name string) *Operator {
	if name == "" {
		name = "kernel"
	}
	return &Operator{Name: name, ctx: ctx}
}

// Compile hands the kernel source to the backend and keeps the compiled
// result. On OpenMP the backend misses its default optimization flag, so it
// is passed explicitly.
func (op *Operator) Compile(source string) error {
	var kernel *gocca.OCCAKernel
	var err error

	device := op.ctx.Device
	if device.Mode() == "OpenMP" {
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = device.BuildKernelFromString(source, op.Name, props)
	} else {
		kernel, err = device.BuildKernelFromString(source, op.Name, nil)
	}
	if err != nil {
		return fmt.Errorf("operator: failed to build kernel %s: %w", op.Name, err)
	}
	if kernel == nil {
		return fmt.Errorf("operator: kernel build returned nil for %s", op.Name)
	}

	op.kernel = kernel
	op.ctx.logger.Info("kernel compiled",
		"name", op.Name,
		"mode", device.Mode(),
		"source_bytes", len(source))
	return nil
}

// Arguments stores the buffer and scalar arguments passed on every Run.
// The time range defaults to the full extended time grid and can be
// overridden with SetTimeRange.
func (op *Operator) Arguments(args ...interface{}) {
	op.userArgs = args
}

// SetTimeRange restricts the traversed time steps to [timeM, timeMax].
func (op *Operator) SetTimeRange(timeM, timeMax int) {
	op.timeM = timeM
	op.timeMax = timeMax
	op.timeSet = true
}

// TimeRange returns the effective time bounds for the next Run.
func (op *Operator) TimeRange() (int, int) {
	if op.timeSet {
		return op.timeM, op.timeMax
	}
	last := 0
	if op.ctx.problem != nil && op.ctx.problem.Time != nil {
		last = op.ctx.problem.Time.ExtendedNum - 1
	}
	return 0, last
}

// Run executes the compiled kernel with the stored arguments plus the time
// range, and waits for the device to finish.
func (op *Operator) Run() error {
	if op.kernel == nil {
		return fmt.Errorf("operator: kernel %s not compiled", op.Name)
	}

	timeM, timeMax := op.TimeRange()
	args := make([]interface{}, 0, len(op.userArgs)+2)
	args = append(args, op.userArgs...)
	args = append(args, timeM, timeMax)

	if err := op.kernel.RunWithArgs(args...); err != nil {
		return fmt.Errorf("operator: kernel %s execution failed: %w", op.Name, err)
	}
	op.ctx.Device.Finish()

	op.ctx.logger.Debug("kernel ran", "name", op.Name, "time_m", timeM, "time_M", timeMax)
	return nil
}

// Free releases the compiled kernel.
func (op *Operator) Free() {
	if op.kernel != nil {
		op.kernel.Free()
		op.kernel = nil
	}
}
