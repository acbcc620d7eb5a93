package robot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/san-kum/robosim/internal/physics"
)

// rollerSpinGain converts RollerTorqueFactor into ball spin in rad/s.
const rollerSpinGain = 1400

type KickerMode int

const (
	Idle KickerMode = iota
	Rolling
	Kicking
)

func (m KickerMode) String() string {
	switch m {
	case Rolling:
		return "rolling"
	case Kicking:
		return "kicking"
	default:
		return "idle"
	}
}

// Kicker is the front paddle with its roller bar.
type Kicker struct {
	parts     *Parts
	body      physics.Body
	local     r3.Vector
	rolling   int
	kicking   bool
	countdown int
	angle     float64
}

func newKicker(w physics.World, p *Parts) *Kicker {
	rs := p.Config.Robot
	k := &Kicker{
		parts: p,
		local: r3.Vector{
			X: rs.CenterFromKicker + rs.KickerThickness,
			Z: -rs.RobotHeight*0.5 + rs.WheelRadius - rs.BottomHeight + rs.KickerZ,
		},
	}

	rot := p.Chassis.Rotation()
	k.body = w.AddBody(physics.BodySpec{
		Name:     "kicker",
		Shape:    physics.Box,
		Size:     r3.Vector{X: rs.KickerThickness, Y: rs.KickerWidth, Z: rs.KickerHeight},
		Mass:     rs.KickerMass,
		Position: physics.ToWorld(p.Chassis.Position(), rot, k.local),
		Rotation: rot,
	})
	w.Hinge(p.Chassis, k.body, k.body.Position(), physics.Rotate(rot, r3.Vector{Y: -1}), true)
	return k
}

// ContactCenter is the paddle center pushed forward by half its thickness.
func (k *Kicker) ContactCenter() r3.Vector {
	f := physics.Forward(k.parts.Chassis)
	c := k.body.Position()
	half := k.parts.Config.Robot.KickerThickness * 0.5
	c.X += f.X * half
	c.Y += f.Y * half
	return c
}

// IsTouchingBall tests the ball center against the contact box in front of
// the paddle. It reads live body positions on every call.
func (k *Kicker) IsTouchingBall() bool {
	cfg := k.parts.Config
	f := physics.Forward(k.parts.Chassis)
	d := k.ContactCenter().Sub(k.parts.Ball.Position())

	along := math.Abs(d.X*f.X + d.Y*f.Y)
	lateral := math.Abs(-d.X*f.Y + d.Y*f.X)
	vertical := math.Abs(d.Z)

	return along < cfg.Robot.KickerThickness*2+cfg.Ball.Radius &&
		lateral < cfg.Robot.KickerWidth*0.5 &&
		vertical < cfg.Robot.KickerHeight*0.5
}

func (k *Kicker) step() {
	switch {
	case k.kicking:
		k.countdown--
		if k.countdown <= 0 {
			k.kicking = false
		}
	case k.rolling != 0:
		if k.IsTouchingBall() {
			k.roll()
		}
	}
}

// roll spins the ball against the roller and nudges it toward the paddle
// center in proportion to how far off-center it sits.
func (k *Kicker) roll() {
	f, ok := k.parts.heading()
	if !ok {
		return
	}
	if k.rolling == -1 {
		f = f.Mul(-1)
	}

	rs := k.parts.Config.Robot
	ball := k.parts.Ball
	ball.SetLastToucher(k.parts.ID)

	v := physics.Forward(k.parts.Chassis)
	d := k.body.Position().Sub(ball.Position())
	yy := -(-d.X*v.Y + d.Y*v.X) / rs.KickerWidth

	spin := rs.RollerTorqueFactor * rollerSpinGain
	ball.SetAngularVelocity(r3.Vector{X: f.Y * spin, Y: -f.X * spin})
	ball.AddTorque(r3.Vector{
		X: yy * f.X * rs.RollerPerpendicularTorqueFactor,
		Y: yy * f.Y * rs.RollerPerpendicularTorqueFactor,
	})
}

// Kick launches a touching ball along the paddle direction at flat speed
// with chip as vertical speed. The incoming along-axis velocity is damped
// and the across-axis velocity kept. The kicker enters Kicking whether or
// not the ball was touched.
func (k *Kicker) Kick(flat, chip float64) {
	f := physics.Forward(k.parts.Chassis)
	sin, cos := math.Sincos(-k.angle)
	dx := f.X*cos - f.Y*sin
	dy := f.X*sin + f.Y*cos
	n := math.Hypot(dx, dy)

	log := k.parts.Logger
	if n >= headingEps && k.IsTouchingBall() {
		dx, dy = dx/n, dy/n
		ball := k.parts.Ball
		vb := ball.LinearVelocity()

		vn := -(vb.X*dx + vb.Y*dy) * k.parts.Config.Robot.KickerDampFactor
		vt := -(vb.X*dy - vb.Y*dx)
		ball.SetLinearVelocity(r3.Vector{
			X: dx*flat + vn*dx - vt*dy,
			Y: dy*flat + vn*dy + vt*dx,
			Z: chip,
		})
		ball.SetLastToucher(k.parts.ID)
		log.Debugw("kick", "robot", k.parts.ID, "flat", flat, "chip", chip)
	} else {
		log.Debugw("kick without contact", "robot", k.parts.ID)
	}

	k.kicking = true
	k.countdown = k.parts.Config.Control.KickCountdown
}

// SetRoller sets the roller direction; any positive value means +1 and any
// negative value -1.
func (k *Kicker) SetRoller(dir int) {
	switch {
	case dir > 0:
		k.rolling = 1
	case dir < 0:
		k.rolling = -1
	default:
		k.rolling = 0
	}
}

func (k *Kicker) ToggleRoller() {
	if k.rolling == 0 {
		k.rolling = 1
	} else {
		k.rolling = 0
	}
}

// Rotate turns the paddle direction by delta radians.
func (k *Kicker) Rotate(delta float64) { k.angle += delta }

func (k *Kicker) RotateAbsolute(angle float64) { k.angle = angle }

func (k *Kicker) Mode() KickerMode {
	switch {
	case k.kicking:
		return Kicking
	case k.rolling != 0:
		return Rolling
	default:
		return Idle
	}
}

func (k *Kicker) Roller() int        { return k.rolling }
func (k *Kicker) Countdown() int     { return k.countdown }
func (k *Kicker) Angle() float64     { return k.angle }
func (k *Kicker) Body() physics.Body { return k.body }

func (k *Kicker) place() {
	k.parts.place(k.body, k.local, mgl64.QuatIdent())
}
