package control

import (
	"fmt"
	"math"

	"github.com/san-kum/robosim/internal/kinematics"
)

const (
	DefaultAngleKp       = 300.0
	DefaultAngleKd       = 13.0
	DefaultAngleLimit    = 300.0
	DefaultAngleDeadZone = 0.03
	DefaultAngleDt       = 1 / 60.0
	angleHysteresis      = 0.003
	minOutput            = 0.001
)

// AngleController is a heading-only PD loop whose output is a
// torque-equivalent rotational demand for kinematics.Body2Wheels.
type AngleController struct {
	Kp       float64
	Kd       float64
	Limit    float64
	DeadZone float64
	Dt       float64

	prevErr float64
	// latched is set while the error sits inside the dead zone; it widens
	// the band by angleHysteresis until the error leaves it again.
	latched bool
}

func NewAngleController() *AngleController {
	return &AngleController{
		Kp:       DefaultAngleKp,
		Kd:       DefaultAngleKd,
		Limit:    DefaultAngleLimit,
		DeadZone: DefaultAngleDeadZone,
		Dt:       DefaultAngleDt,
	}
}

func (a *AngleController) Update(target, yaw float64) float64 {
	err := ConstrainAngle(target - yaw)
	dErr := ConstrainAngle(err-a.prevErr) / a.Dt
	a.prevErr = err

	out := err*a.Kp + dErr*a.Kd
	mag := math.Abs(out)
	floor := kinematics.TCutoff / 2

	band := a.DeadZone - angleHysteresis
	if a.latched {
		band = a.DeadZone + angleHysteresis
	}

	switch {
	case mag > a.Limit:
		out = out / mag * a.Limit
		a.latched = false
	case math.Abs(err) < band:
		out = 0
		a.latched = true
	case mag < floor && mag > minOutput:
		out = out / mag * floor
		a.latched = false
	default:
		a.latched = false
	}
	return out
}

// Latched reports whether the dead-zone hysteresis is currently widened.
func (a *AngleController) Latched() bool { return a.latched }

func (a *AngleController) Reset() {
	a.prevErr = 0
	a.latched = false
}

func (a *AngleController) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":       a.Kp,
		"Kd":       a.Kd,
		"Limit":    a.Limit,
		"DeadZone": a.DeadZone,
	}
}

func (a *AngleController) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		a.Kp = value
	case "Kd":
		a.Kd = value
	case "Limit":
		a.Limit = value
	case "DeadZone":
		a.DeadZone = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
