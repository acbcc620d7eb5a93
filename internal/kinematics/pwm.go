package kinematics

import "math"

const (
	PWMCutoff  = 3.0
	PWMRoundUp = 3.1
	PWMMax     = 100.0

	// MotorConstant converts a duty-cycle percentage into wheel speed:
	// 374 rpm/V at 12 V nominal, through the 0.288 gear stage.
	MotorConstant = 374.0 / 60.0 * 12.0 / 100.0 / 0.288

	// MaxMotorSpeed is the wheel speed at full duty cycle.
	MaxMotorSpeed = MotorConstant * PWMMax
)

// ClampPWM applies the dead zone, round-up floor and saturation to one
// channel. The sign is always preserved.
func ClampPWM(p float64) float64 {
	m := math.Abs(p)
	switch {
	case m < PWMCutoff:
		return 0
	case m < PWMRoundUp:
		return math.Copysign(PWMRoundUp, p)
	case m > PWMMax:
		return math.Copysign(PWMMax, p)
	}
	return p
}

// PWM2Motor converts four power percentages into desired wheel velocities.
func PWM2Motor(power [4]float64) [4]float64 {
	var vel [4]float64
	for i, p := range power {
		vel[i] = MotorConstant * ClampPWM(p)
	}
	return vel
}
