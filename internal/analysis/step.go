package analysis

import (
	"math"

	"github.com/pkg/errors"
)

var ErrShortSeries = errors.New("analysis: series too short")

// settleBand is the fraction of the step size a settled response stays
// within.
const settleBand = 0.05

// StepResponse characterises how a series moves from its first value to a
// target.
type StepResponse struct {
	Start    float64
	Target   float64
	Final    float64
	Peak     float64
	PeakTime float64
	// RiseTime is the time from 10% to 90% of the step, or -1 if the
	// series never gets there.
	RiseTime float64
	// Overshoot is how far the peak passes the target as a percentage of
	// the step.
	Overshoot float64
	// SettlingTime is the time after which the series stays within 5% of
	// the step around the target, or -1 if it never does.
	SettlingTime     float64
	SteadyStateError float64
}

// AnalyzeStep measures the response of values sampled at times towards
// target.
func AnalyzeStep(times, values []float64, target float64) (StepResponse, error) {
	if len(values) < 2 || len(times) != len(values) {
		return StepResponse{}, errors.Wrapf(ErrShortSeries, "%d times, %d values", len(times), len(values))
	}

	start := values[0]
	step := target - start
	r := StepResponse{
		Start:            start,
		Target:           target,
		Final:            values[len(values)-1],
		RiseTime:         -1,
		SettlingTime:     -1,
		SteadyStateError: math.Abs(target - values[len(values)-1]),
	}
	if step == 0 {
		r.Peak, r.RiseTime, r.SettlingTime = start, 0, 0
		return r, nil
	}

	// progress is 0 at the start and 1 on target, whatever the sign of
	// the step
	progress := func(v float64) float64 { return (v - start) / step }

	t10, t90 := -1.0, -1.0
	peak := 0.0
	for i, v := range values {
		p := progress(v)
		if t10 < 0 && p >= 0.1 {
			t10 = times[i]
		}
		if t90 < 0 && p >= 0.9 {
			t90 = times[i]
		}
		if i == 0 || p > peak {
			peak = p
			r.Peak, r.PeakTime = v, times[i]
		}
	}
	if t10 >= 0 && t90 >= 0 {
		r.RiseTime = t90 - t10
	}
	if peak > 1 {
		r.Overshoot = (peak - 1) * 100
	}

	band := settleBand * math.Abs(step)
	for i := len(values) - 1; i >= 0; i-- {
		if math.Abs(values[i]-target) > band {
			if i < len(values)-1 {
				r.SettlingTime = times[i+1] - times[0]
			}
			return r, nil
		}
	}
	r.SettlingTime = 0
	return r, nil
}

// UnwrapDegrees removes the 360 degree jumps of a wrapped heading series.
func UnwrapDegrees(values []float64) []float64 {
	out := make([]float64, len(values))
	offset := 0.0
	for i, v := range values {
		if i > 0 {
			d := v - values[i-1]
			if d > 180 {
				offset -= 360
			} else if d < -180 {
				offset += 360
			}
		}
		out[i] = v + offset
	}
	return out
}
