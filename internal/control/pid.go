package control

import "fmt"

const (
	DefaultHeadingKp = 6.0
	DefaultHeadingKd = 0.6
)

// HeadingPD drives the chassis toward a target heading while carrying a
// translational velocity demand into the robot frame.
type HeadingPD struct {
	Kp      float64
	Kd      float64
	prevYaw float64
	first   bool
}

func NewHeadingPD(kp, kd float64) *HeadingPD {
	return &HeadingPD{
		Kp:    kp,
		Kd:    kd,
		first: true,
	}
}

// Update returns the robot-frame velocity and yaw rate for one tick.
// yaw is the current heading in radians and tps the tick rate; the
// derivative term uses the heading change since the previous call and is
// zero on the first call after construction or Reset.
func (h *HeadingPD) Update(vx, vy, target, yaw, tps float64) (float64, float64, float64) {
	yaw = ConstrainAngle(yaw)
	err := ConstrainAngle(target - yaw)

	rate := 0.0
	if !h.first {
		rate = ConstrainAngle(yaw - h.prevYaw)
	}
	h.prevYaw = yaw
	h.first = false

	bx, by := Rotate(vx, vy, -yaw)
	w := h.Kp*err - h.Kd*rate*tps
	return bx, by, w
}

// Reset clears derivative state
func (h *HeadingPD) Reset() {
	h.prevYaw = 0
	h.first = true
}

func (h *HeadingPD) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": h.Kp,
		"Kd": h.Kd,
	}
}

func (h *HeadingPD) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		h.Kp = value
	case "Kd":
		h.Kd = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
