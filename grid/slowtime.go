package grid

import (
	"fmt"
	"sync"
)

// SlowTimeConfig defines the two-level acquisition grid: a frame schedule
// (one of FrameRate/FrameStep plus NumFrame) and an optional per-frame
// acquisition schedule (AcqRate/AcqStep plus NumAcq). When the acquisition
// pair is omitted entirely, each frame holds a single acquisition.
type SlowTimeConfig struct {
	FrameRate *float64 // Hz
	FrameStep *float64 // seconds
	AcqRate   *float64 // Hz
	AcqStep   *float64 // seconds
	NumFrame  *int
	NumAcq    *int
}

// SlowTime is the acquisition grid: Num() samples laid out as NumFrame
// frames of NumAcq acquisitions each. An AcqRate of -1 encodes the absence
// of sub-frame sampling.
type SlowTime struct {
	Start float64
	Stop  float64

	FrameStep float64
	FrameRate float64
	NumFrame  int

	AcqStep float64
	AcqRate float64
	NumAcq  int

	gridOnce sync.Once
	grid     []float32
}

// NewSlowTime constructs an acquisition grid. The acquisition schedule must
// fit within one frame: NumAcq*AcqStep may not exceed FrameStep.
func NewSlowTime(cfg SlowTimeConfig) (*SlowTime, error) {
	var frameStep, frameRate float64
	switch {
	case cfg.FrameStep != nil:
		frameStep = *cfg.FrameStep
		frameRate = 1 / frameStep
	case cfg.FrameRate != nil:
		frameRate = *cfg.FrameRate
		frameStep = 1 / frameRate
	default:
		return nil, fmt.Errorf("slowtime: either frame rate or frame step must be set: %w", ErrConfiguration)
	}

	if cfg.NumFrame == nil {
		return nil, fmt.Errorf("slowtime: num frames must be set: %w", ErrConfiguration)
	}
	numFrame := *cfg.NumFrame
	if numFrame < 1 {
		return nil, fmt.Errorf("slowtime: num frames=%d must be at least 1: %w", numFrame, ErrConfiguration)
	}

	var acqStep, acqRate float64
	numAcq := 1
	if cfg.AcqStep == nil && cfg.AcqRate == nil {
		acqStep = 0
		acqRate = -1
	} else {
		if cfg.NumAcq == nil {
			return nil, fmt.Errorf("slowtime: num acquisitions must be set with an acquisition schedule: %w",
				ErrConfiguration)
		}
		numAcq = *cfg.NumAcq
		if numAcq < 1 {
			return nil, fmt.Errorf("slowtime: num acquisitions=%d must be at least 1: %w", numAcq, ErrConfiguration)
		}
		switch {
		case cfg.AcqStep == nil:
			acqRate = *cfg.AcqRate
			acqStep = 1 / acqRate
		case cfg.AcqRate == nil:
			acqStep = *cfg.AcqStep
			acqRate = 1 / acqStep
		default:
			acqStep = *cfg.AcqStep
			acqRate = *cfg.AcqRate
		}
	}

	if float64(numAcq)*acqStep > frameStep {
		return nil, fmt.Errorf("slowtime: acquisition step (%e s) too large for frame step (%e s): %w",
			float64(numAcq)*acqStep, frameStep, ErrConfiguration)
	}

	start := 0.0
	return &SlowTime{
		Start:     start,
		Stop:      start + frameStep*float64(numFrame-1),
		FrameStep: frameStep,
		FrameRate: frameRate,
		NumFrame:  numFrame,
		AcqStep:   acqStep,
		AcqRate:   acqRate,
		NumAcq:    numAcq,
	}, nil
}

// Num returns the total number of samples across all frames.
func (st *SlowTime) Num() int { return st.NumFrame * st.NumAcq }

// ExtendedNum equals Num; the acquisition grid carries no padding.
func (st *SlowTime) ExtendedNum() int { return st.Num() }

// Inner returns the slice covering the whole grid.
func (st *SlowTime) Inner() Slice { return Slice{Start: 0, Stop: st.Num()} }

// Resample is not supported for acquisition grids.
func (st *SlowTime) Resample() (*SlowTime, error) {
	return nil, fmt.Errorf("slowtime: resampling: %w", ErrUnsupported)
}

// Grid returns the sample times. With a sub-frame schedule each frame
// contributes NumAcq points spaced by AcqStep from the frame start;
// otherwise one point per frame.
func (st *SlowTime) Grid() []float32 {
	st.gridOnce.Do(func() {
		if st.AcqRate > 0 {
			start := 0.0
			stop := start + st.AcqStep*float64(st.NumAcq-1)

			out := make([]float32, 0, st.Num())
			for frame := 0; frame < st.NumFrame; frame++ {
				shift := st.FrameStep * float64(frame)
				out = append(out, linspace32(start+shift, stop+shift, st.NumAcq)...)
			}
			st.grid = out
		} else {
			st.grid = linspace32(st.Start, st.Stop, st.NumFrame)
		}
	})
	return st.grid
}
