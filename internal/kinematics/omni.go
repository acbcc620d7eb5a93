// Package kinematics maps body-frame motion demands onto the four wheel
// motors of an omni-wheel chassis.
//
// Two mappings live here:
//
//   - [Body2Wheels]: the fixed ±60° force layout that produces PWM power
//     percentages, with the [TwoWheelRotation] policy band.
//   - [Mapper]: velocity inverse kinematics for the configured wheel mount
//     angles, producing wheel angular velocities.
//
// Every output that reaches a motor passes through [Scale] (or the
// equivalent [ScaleLimit] factor), which shrinks all four channels by the
// same factor so the commanded direction is preserved.
package kinematics

import "math"

const (
	// ChassisRadius and WheelRadius are the fixed force-layout geometry.
	ChassisRadius = 0.0775
	WheelRadius   = 0.0275

	cos60 = 0.5
	sin60 = 0.866

	// TCutoff is the smallest rotational demand that still clears the PWM
	// dead zone on all four motors.
	TCutoff = PWMRoundUp * 4 * ChassisRadius / WheelRadius
)

// RotationPolicy records how Body2Wheels distributed the rotational demand.
type RotationPolicy int

const (
	FourWheelRotation RotationPolicy = iota
	// TwoWheelRotation drives rotation through wheels 0 and 2 only, at double
	// gain, so marginal torque demands are not split below the dead zone.
	TwoWheelRotation
)

func (p RotationPolicy) String() string {
	switch p {
	case TwoWheelRotation:
		return "two-wheel"
	default:
		return "four-wheel"
	}
}

// TwoWheelBand returns the half-open |Fw| band [lo, hi) that selects
// TwoWheelRotation.
func TwoWheelBand() (lo, hi float64) {
	return TCutoff/2 - 0.1, TCutoff
}

func SelectRotationPolicy(fw float64) RotationPolicy {
	lo, hi := TwoWheelBand()
	if m := math.Abs(fw); m >= lo && m < hi {
		return TwoWheelRotation
	}
	return FourWheelRotation
}

// Body2Wheels converts a body-frame force demand into four wheel power
// commands.
func Body2Wheels(fx, fy, fw float64) ([4]float64, RotationPolicy) {
	policy := SelectRotationPolicy(fw)
	x := fx / sin60
	y := fy / cos60
	k := WheelRadius / 4

	if policy == TwoWheelRotation {
		rot := 2 / ChassisRadius * fw
		return [4]float64{
			(x + y + rot) * k,
			(x - y) * k,
			(-x - y + rot) * k,
			(-x + y) * k,
		}, policy
	}

	rot := fw / ChassisRadius
	return [4]float64{
		(x + y + rot) * k,
		(x - y + rot) * k,
		(-x - y + rot) * k,
		(-x + y + rot) * k,
	}, policy
}

// ScaleLimit returns the factor in (0, 1] that brings the largest
// Body2Wheels channel down to limit. A non-positive limit disables limiting.
func ScaleLimit(fx, fy, fw, limit float64) float64 {
	out, _ := Body2Wheels(fx, fy, fw)
	return scaleFor(MaxAbs(out), limit)
}

// Scale multiplies all channels by the ScaleLimit-style factor for ws.
func Scale(ws [4]float64, limit float64) ([4]float64, float64) {
	s := scaleFor(MaxAbs(ws), limit)
	if s == 1 {
		return ws, 1
	}
	for i := range ws {
		ws[i] *= s
	}
	return ws, s
}

func scaleFor(maxEl, limit float64) float64 {
	if limit <= 0 || maxEl <= limit {
		return 1
	}
	return limit / maxEl
}

func MaxAbs(ws [4]float64) float64 {
	m := 0.0
	for _, w := range ws {
		m = math.Max(m, math.Abs(w))
	}
	return m
}
