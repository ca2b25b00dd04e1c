package grid

import (
	"fmt"
	"math"
	"sync"
)

// TimeConfig defines a temporal grid. Exactly three of the four fields must
// be set; the fourth is derived. Setting all four is accepted only when they
// are mutually consistent.
type TimeConfig struct {
	Start *float64 // seconds
	Step  *float64 // seconds
	Num   *int
	Stop  *float64 // seconds
}

// Time is the temporal grid over which a problem is discretized. Like Space
// it distinguishes an inner domain from an extended one: Extend grows the
// grid by a number of padding steps on each end.
type Time struct {
	Start float64
	Stop  float64
	Step  float64
	Num   int

	// Extra holds the (left, right) padding in steps, zero until Extend.
	Extra         [2]int
	ExtendedStart float64
	ExtendedStop  float64
	ExtendedNum   int

	extended bool

	gridOnce    sync.Once
	grid        []float32
	extGridOnce sync.Once
	extGrid     []float32
}

// NewTime constructs a temporal grid from three of {Start, Step, Num, Stop}.
func NewTime(cfg TimeConfig) (*Time, error) {
	supplied := 0
	for _, set := range []bool{cfg.Start != nil, cfg.Step != nil, cfg.Num != nil, cfg.Stop != nil} {
		if set {
			supplied++
		}
	}
	if supplied < 3 {
		return nil, fmt.Errorf("time: three of start, step, num and stop must be set, got %d: %w",
			supplied, ErrConfiguration)
	}

	var start, step, stop float64
	var num int
	switch {
	case cfg.Start == nil:
		step, num, stop = *cfg.Step, *cfg.Num, *cfg.Stop
		start = stop - step*float64(num-1)
	case cfg.Step == nil:
		start, num, stop = *cfg.Start, *cfg.Num, *cfg.Stop
		if num < 2 {
			return nil, fmt.Errorf("time: cannot derive step with num=%d: %w", num, ErrConfiguration)
		}
		step = (stop - start) / float64(num-1)
	case cfg.Num == nil:
		start, step, stop = *cfg.Start, *cfg.Step, *cfg.Stop
		if step <= 0 {
			return nil, fmt.Errorf("time: cannot derive num with step=%g: %w", step, ErrConfiguration)
		}
		num = int(math.Ceil((stop-start)/step + 1))
		stop = step*float64(num-1) + start
	default:
		start, step, num = *cfg.Start, *cfg.Step, *cfg.Num
		stop = start + step*float64(num-1)
		if cfg.Stop != nil {
			tol := 1e-9 * math.Max(1, math.Abs(stop))
			if math.Abs(*cfg.Stop-stop) > tol {
				return nil, fmt.Errorf("time: stop=%g inconsistent with start+step*(num-1)=%g: %w",
					*cfg.Stop, stop, ErrConfiguration)
			}
		}
	}

	if num < 1 {
		return nil, fmt.Errorf("time: num=%d must be at least 1: %w", num, ErrConfiguration)
	}

	return &Time{
		Start:         start,
		Stop:          stop,
		Step:          step,
		Num:           num,
		ExtendedStart: start,
		ExtendedStop:  stop,
		ExtendedNum:   num,
	}, nil
}

// Extend pads the grid by left and right steps. The boundary moves by
// (k-1)*step for a padding of k steps; the convention is unusual but
// deliberate, and downstream indexing depends on it. Padding can be set
// only once.
func (t *Time) Extend(left, right int) error {
	if t.extended {
		return fmt.Errorf("time: padding already set: %w", ErrConfiguration)
	}
	if left < 0 || right < 0 {
		return fmt.Errorf("time: negative padding (%d, %d): %w", left, right, ErrConfiguration)
	}

	t.Extra = [2]int{left, right}
	t.ExtendedStart = t.Start - float64(left-1)*t.Step
	t.ExtendedStop = t.Stop + float64(right-1)*t.Step
	t.ExtendedNum = t.Num + left + right
	t.extended = true
	return nil
}

// Resample is not supported for temporal grids; the rejection is explicit
// rather than a silent approximation.
func (t *Time) Resample() (*Time, error) {
	return nil, fmt.Errorf("time: resampling: %w", ErrUnsupported)
}

// Inner returns the slice selecting the inner domain within the extended
// grid.
func (t *Time) Inner() Slice {
	return Slice{Start: t.Extra[0], Stop: t.Extra[0] + t.Num}
}

// Grid returns the time points of the inner domain.
func (t *Time) Grid() []float32 {
	t.gridOnce.Do(func() {
		t.grid = linspace32(t.Start, t.Stop, t.Num)
	})
	return t.grid
}

// ExtendedGrid returns the time points of the extended domain.
func (t *Time) ExtendedGrid() []float32 {
	t.extGridOnce.Do(func() {
		t.extGrid = linspace32(t.ExtendedStart, t.ExtendedStop, t.ExtendedNum)
	})
	return t.extGrid
}
