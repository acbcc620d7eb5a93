package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mapper is velocity inverse kinematics for a chassis whose wheels sit at
// the configured mount angles.
type Mapper struct {
	sin, cos    [4]float64
	robotRadius float64
	wheelRadius float64
}

func NewMapper(anglesDeg [4]float64, robotRadius, wheelRadius float64) *Mapper {
	m := &Mapper{robotRadius: robotRadius, wheelRadius: wheelRadius}
	for i, a := range anglesDeg {
		m.sin[i], m.cos[i] = math.Sincos(a * math.Pi / 180)
	}
	return m
}

// Wheels returns the wheel angular velocities that realise body velocity
// (vx, vy) and yaw rate w.
func (m *Mapper) Wheels(vx, vy, w float64) [4]float64 {
	var out [4]float64
	for i := range out {
		out[i] = (m.robotRadius*w - vx*m.sin[i] + vy*m.cos[i]) / m.wheelRadius
	}
	return out
}

// Forward is the least-squares body velocity (vx, vy, w) for four wheel
// speeds. It inverts Wheels exactly for any output of Wheels.
func (m *Mapper) Forward(ws [4]float64) (vx, vy, w float64) {
	var ata mgl64.Mat3
	var atb mgl64.Vec3
	for i := range ws {
		row := mgl64.Vec3{-m.sin[i], m.cos[i], m.robotRadius}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				ata.Set(r, c, ata.At(r, c)+row[r]*row[c])
			}
			atb[r] += row[r] * ws[i] * m.wheelRadius
		}
	}
	if math.Abs(ata.Det()) < 1e-12 {
		return 0, 0, 0
	}
	x := ata.Inv().Mul3x1(atb)
	return x[0], x[1], x[2]
}
