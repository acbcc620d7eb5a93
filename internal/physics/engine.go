package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

type Shape int

const (
	Cylinder Shape = iota
	Box
	Sphere
)

// BodySpec describes a rigid body to create. Size is interpreted per shape:
// box uses all three extents, cylinder uses X as radius and Z as length,
// sphere uses X as radius.
type BodySpec struct {
	Name     string
	Shape    Shape
	Size     r3.Vector
	Mass     float64
	Position r3.Vector
	Rotation mgl64.Quat
	Hidden   bool
}

// Body is a rigid body handle owned by the engine.
type Body interface {
	Position() r3.Vector
	SetPosition(p r3.Vector)
	Rotation() mgl64.Quat
	SetRotation(q mgl64.Quat)
	LinearVelocity() r3.Vector
	SetLinearVelocity(v r3.Vector)
	AngularVelocity() r3.Vector
	SetAngularVelocity(w r3.Vector)
	AddTorque(t r3.Vector)
}

// Ball is the shared ball body. The last-toucher tag is written by
// whichever robot last handled it; -1 means untouched.
type Ball interface {
	Body
	LastToucher() int
	SetLastToucher(id int)
}

// Motor is an angular-motor constraint between two bodies.
type Motor interface {
	SetVelocity(v float64)
	SetMaxForce(f float64)
	Velocity() float64
	MaxForce() float64
}

// World is what the robot core needs from the engine to build itself.
type World interface {
	AddBody(spec BodySpec) Body
	AddBall(spec BodySpec) Ball
	// Hinge attaches child to parent about axis through anchor. A locked
	// hinge has both stops at zero and acts as a fixed joint.
	Hinge(parent, child Body, anchor, axis r3.Vector, locked bool)
	Fix(parent, child Body)
	AngularMotor(parent, child Body, axis r3.Vector) Motor
}

// Engine is a World that can be advanced by one fixed step.
type Engine interface {
	World
	Step(dt float64)
}
