package robot

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/san-kum/robosim/internal/physics"
)

// Wheel is one motored omni wheel. It holds the commanded angular speed and
// pushes it to its motor on every step.
type Wheel struct {
	id       int
	angle    float64
	speed    float64
	body     physics.Body
	motor    physics.Motor
	local    r3.Vector
	localRot mgl64.Quat
	parts    *Parts
}

func newWheel(w physics.World, p *Parts, id int, angleDeg float64) *Wheel {
	rs := p.Config.Robot
	a := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(a)
	rad := rs.RobotRadius - rs.WheelThickness/2

	wh := &Wheel{
		id:    id,
		angle: angleDeg,
		local: r3.Vector{
			X: rad * cos,
			Y: rad * sin,
			Z: -rs.RobotHeight*0.5 + rs.WheelRadius - rs.BottomHeight,
		},
		localRot: physics.AxisAngle(r3.Vector{X: -sin, Y: cos}, math.Pi/2),
		parts:    p,
	}

	rot := p.Chassis.Rotation()
	wh.body = w.AddBody(physics.BodySpec{
		Name:     fmt.Sprintf("wheel-%d-%d", p.ID, id),
		Shape:    physics.Cylinder,
		Size:     r3.Vector{X: rs.WheelRadius, Z: rs.WheelThickness},
		Mass:     rs.WheelMass,
		Position: physics.ToWorld(p.Chassis.Position(), rot, wh.local),
		Rotation: rot.Mul(wh.localRot),
	})

	axis := physics.Rotate(rot, r3.Vector{X: cos, Y: sin})
	w.Hinge(p.Chassis, wh.body, wh.body.Position(), axis, false)
	wh.motor = w.AngularMotor(p.Chassis, wh.body, axis)
	wh.motor.SetMaxForce(rs.WheelMotorFMax)
	return wh
}

func (wh *Wheel) step() {
	wh.motor.SetVelocity(wh.speed)
	wh.motor.SetMaxForce(wh.parts.Config.Robot.WheelMotorFMax)
}

func (wh *Wheel) place() {
	wh.parts.place(wh.body, wh.local, wh.localRot)
}

func (wh *Wheel) ID() int              { return wh.id }
func (wh *Wheel) Angle() float64       { return wh.angle }
func (wh *Wheel) Speed() float64       { return wh.speed }
func (wh *Wheel) Body() physics.Body   { return wh.body }
func (wh *Wheel) Motor() physics.Motor { return wh.motor }
