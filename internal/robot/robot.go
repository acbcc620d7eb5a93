package robot

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/control"
	"github.com/san-kum/robosim/internal/kinematics"
	"github.com/san-kum/robosim/internal/physics"
)

const (
	NumWheels = 4

	defaultWheelKp = 1.0
	defaultWheelKd = 0.2
)

type Team int

const (
	Blue Team = iota
	Yellow
)

func (t Team) String() string {
	if t == Yellow {
		return "yellow"
	}
	return "blue"
}

// Spawn places a robot when it is built.
type Spawn struct {
	ID       int
	Team     Team
	X, Y     float64
	Reversed bool
}

type Option func(*Robot)

func WithLogger(l golog.Logger) Option {
	return func(r *Robot) { r.log = l }
}

// Robot composes the chassis, four wheels and the kicker of one robot and
// steps them once per tick.
type Robot struct {
	parts   *Parts
	dummy   physics.Body
	wheels  [NumWheels]*Wheel
	kicker  *Kicker
	mapper  *kinematics.Mapper
	heading *control.HeadingPD
	angle   *control.AngleController

	team    Team
	dir     int
	on      bool
	lastOn  bool
	first   bool
	lastDir float64
	policy  kinematics.RotationPolicy
	pending *Command

	log golog.Logger
}

// New builds a robot at spawn on w. The ball is shared by every robot of
// the world and is only tagged, never owned.
func New(w physics.World, ball physics.Ball, cfg *config.Config, spawn Spawn, opts ...Option) *Robot {
	r := &Robot{
		team:   spawn.Team,
		dir:    1,
		on:     true,
		lastOn: true,
		first:  true,
		log:    zap.NewNop().Sugar(),
	}
	if spawn.Reversed {
		r.dir = -1
	}
	for _, opt := range opts {
		opt(r)
	}

	rs := cfg.Robot
	start := r3.Vector{X: spawn.X, Y: spawn.Y, Z: cfg.StartZ()}
	chassis := w.AddBody(physics.BodySpec{
		Name:     "chassis",
		Shape:    physics.Cylinder,
		Size:     r3.Vector{X: rs.RobotRadius, Z: rs.RobotHeight},
		Mass:     rs.BodyMass * 0.99,
		Position: start,
	})
	r.dummy = w.AddBody(physics.BodySpec{
		Name:     "dummy",
		Shape:    physics.Sphere,
		Size:     r3.Vector{X: rs.CenterFromKicker},
		Mass:     rs.BodyMass * 0.01,
		Position: start,
		Hidden:   true,
	})
	w.Fix(chassis, r.dummy)

	r.parts = &Parts{
		ID:      spawn.ID,
		Config:  cfg,
		Chassis: chassis,
		Ball:    ball,
		Logger:  r.log,
	}
	r.kicker = newKicker(w, r.parts)
	for i, a := range rs.WheelAngles {
		r.wheels[i] = newWheel(w, r.parts, i, a)
	}

	r.mapper = kinematics.NewMapper(rs.WheelAngles, rs.RobotRadius, rs.WheelRadius)
	r.heading = control.NewHeadingPD(orDefault(cfg.Control.HeadingKp, control.DefaultHeadingKp),
		orDefault(cfg.Control.HeadingKd, control.DefaultHeadingKd))
	r.angle = control.NewAngleController()
	return r
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Step runs one tick. A pending command is taken first; a disabled robot
// drops it. On the tick after being disabled the wheels and roller are
// zeroed and pushed once so the motors brake.
func (r *Robot) Step() {
	cmd := r.pending
	r.pending = nil

	if r.on {
		if r.first {
			if r.dir == -1 {
				r.SetDir(180)
			}
			r.first = false
		}
		if cmd != nil {
			r.apply(*cmd)
		}
		r.stepActuators()
	} else if r.lastOn {
		r.ResetSpeeds()
		r.kicker.SetRoller(0)
		r.stepActuators()
		r.log.Debugw("robot disabled, motors stopped", "robot", r.parts.ID)
	}
	r.lastOn = r.on
}

func (r *Robot) stepActuators() {
	for _, wh := range r.wheels {
		wh.step()
	}
	r.kicker.step()
}

func (r *Robot) validWheel(i int) bool { return i >= 0 && i < NumWheels }

// SetSpeed sets one wheel speed. Indices outside [0, 4) are ignored.
func (r *Robot) SetSpeed(i int, v float64) {
	if r.validWheel(i) {
		r.wheels[i].speed = v
	}
}

func (r *Robot) IncSpeed(i int, d float64) {
	if r.validWheel(i) {
		r.wheels[i].speed += d
	}
}

// Speed returns the commanded speed of wheel i, or -1 for an invalid index.
func (r *Robot) Speed(i int) float64 {
	if !r.validWheel(i) {
		return -1
	}
	return r.wheels[i].speed
}

func (r *Robot) Speeds() [NumWheels]float64 {
	var ws [NumWheels]float64
	for i, wh := range r.wheels {
		ws[i] = wh.speed
	}
	return ws
}

func (r *Robot) ResetSpeeds() {
	for _, wh := range r.wheels {
		wh.speed = 0
	}
}

func (r *Robot) setSpeeds(ws [NumWheels]float64) {
	for i, v := range ws {
		r.wheels[i].speed = v
	}
}

// SetVelocity drives the chassis at body velocity (vx, vy) and yaw rate w.
// Wheel targets are blended with the previous command and uniformly scaled
// into the wheel speed limit.
func (r *Robot) SetVelocity(vx, vy, w float64) {
	cc := r.parts.Config.Control
	limit := orDefault(cc.MaxWheelSpeed, kinematics.MaxMotorSpeed)
	kp := orDefault(cc.WheelKp, defaultWheelKp)
	kd := orDefault(cc.WheelKd, defaultWheelKd)
	fps := r.parts.Config.World.DesiredFPS

	ws, _ := kinematics.Scale(r.mapper.Wheels(vx, vy, w), limit)
	for i, dw := range ws {
		ws[i] = kp*dw - kd*(dw-r.wheels[i].speed)/fps
	}
	ws, _ = kinematics.Scale(ws, limit)
	r.setSpeeds(ws)
}

// SetAngle drives at (vx, vy) given in the world frame while turning toward
// the target heading in radians.
func (r *Robot) SetAngle(vx, vy, target float64) {
	yaw := control.ConstrainAngle(r.Dir() * math.Pi / 180)
	bx, by, w := r.heading.Update(vx, vy, target, yaw, r.parts.Config.World.DesiredFPS)
	r.SetVelocity(bx, by, w)
}

// SetForce drives the fixed-geometry force mapping through the PWM model.
func (r *Robot) SetForce(fx, fy, fw float64) {
	ws, policy := kinematics.Body2Wheels(fx, fy, fw)
	s := kinematics.ScaleLimit(fx, fy, fw, kinematics.PWMMax)
	for i := range ws {
		ws[i] *= s
	}
	if policy == kinematics.TwoWheelRotation && r.policy != policy {
		r.log.Debugw("two-wheel rotation", "robot", r.parts.ID, "fw", fw)
	}
	r.policy = policy
	r.setSpeeds(kinematics.PWM2Motor(ws))
}

// SetForceAngle is SetForce with the rotational term produced by the
// angle controller toward heading in radians.
func (r *Robot) SetForceAngle(fx, fy, heading float64) {
	fw := r.angle.Update(heading, r.Dir()*math.Pi/180)
	r.SetForce(fx, fy, fw)
}

func (r *Robot) XY() (x, y float64) {
	p := r.parts.Chassis.Position()
	return p.X, p.Y
}

// SetXY teleports the robot, keeping its heading.
func (r *Robot) SetXY(x, y float64) {
	r.parts.Chassis.SetPosition(r3.Vector{X: x, Y: y, Z: r.parts.Config.StartZ()})
	r.placeParts()
	r.log.Debugw("teleport", "robot", r.parts.ID, "x", x, "y", y)
}

// Dir is the chassis heading in degrees within (-180, 180]. When the chassis
// has no horizontal heading the last known value is returned.
func (r *Robot) Dir() float64 {
	f, ok := r.parts.heading()
	if !ok {
		return r.lastDir
	}
	r.lastDir = control.ConstrainAngle(math.Atan2(f.Y, f.X)) * 180 / math.Pi
	return r.lastDir
}

// SetDir turns the robot in place to ang degrees.
func (r *Robot) SetDir(ang float64) {
	r.parts.Chassis.SetRotation(physics.Yaw(ang * math.Pi / 180))
	r.placeParts()
}

func (r *Robot) placeParts() {
	c := r.parts.Chassis
	r.dummy.SetPosition(c.Position())
	r.dummy.SetRotation(c.Rotation())
	r.kicker.place()
	for _, wh := range r.wheels {
		wh.place()
	}
}

// ResetRobot stops every body, drops residual momentum and restores the
// spawn heading at the current position.
func (r *Robot) ResetRobot() {
	r.ResetSpeeds()
	bodies := []physics.Body{r.parts.Chassis, r.dummy, r.kicker.body}
	for _, wh := range r.wheels {
		bodies = append(bodies, wh.body)
	}
	for _, b := range bodies {
		b.SetLinearVelocity(r3.Vector{})
		b.SetAngularVelocity(r3.Vector{})
	}

	x, y := r.XY()
	r.SetXY(x, y)
	if r.dir == -1 {
		r.SetDir(180)
	} else {
		r.SetDir(0)
	}
	r.heading.Reset()
	r.angle.Reset()
}

func (r *Robot) SetEnabled(on bool) {
	if on != r.on {
		r.log.Debugw("robot enabled", "robot", r.parts.ID, "on", on)
	}
	r.on = on
}

func (r *Robot) Toggle() { r.SetEnabled(!r.on) }

func (r *Robot) Enabled() bool                             { return r.on }
func (r *Robot) ID() int                                   { return r.parts.ID }
func (r *Robot) Team() Team                                { return r.team }
func (r *Robot) Reversed() bool                            { return r.dir == -1 }
func (r *Robot) Kicker() *Kicker                           { return r.kicker }
func (r *Robot) Chassis() physics.Body                     { return r.parts.Chassis }
func (r *Robot) Ball() physics.Ball                        { return r.parts.Ball }
func (r *Robot) Config() *config.Config                    { return r.parts.Config }
func (r *Robot) Policy() kinematics.RotationPolicy         { return r.policy }
func (r *Robot) HeadingController() *control.HeadingPD     { return r.heading }
func (r *Robot) AngleController() *control.AngleController { return r.angle }

// Wheel returns wheel i, or nil for an invalid index.
func (r *Robot) Wheel(i int) *Wheel {
	if !r.validWheel(i) {
		return nil
	}
	return r.wheels[i]
}
