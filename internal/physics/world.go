package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

const (
	StandardGravity = 9.8
	groundEps       = 1e-9
	singularEps     = 1e-12
)

// KinematicWorld is a reference engine for tests and offline runs. Attached
// bodies ride rigidly on their parent, a body carrying angular motors is
// driven by the least-squares rolling solution of its active motors, and
// free bodies fly under gravity with rolling friction on the ground plane.
// There is no collision detection.
//
// Wheel sign convention: a motor turning at s about axis a with wheel radius
// ρ moves its hub along (ẑ × a) at s·ρ.
type KinematicWorld struct {
	gravity  float64
	friction float64
	bodies   []*RigidBody
}

func NewKinematicWorld(gravity, rollingFriction float64) *KinematicWorld {
	return &KinematicWorld{gravity: gravity, friction: rollingFriction}
}

type RigidBody struct {
	spec     BodySpec
	pos      r3.Vector
	rot      mgl64.Quat
	lin      r3.Vector
	ang      r3.Vector
	torque   r3.Vector
	tag      int
	parent   *RigidBody
	localPos r3.Vector
	localRot mgl64.Quat
	motors   []*AngularMotor
	drivenBy *AngularMotor
}

type AngularMotor struct {
	parent    *RigidBody
	child     *RigidBody
	localAxis r3.Vector
	velocity  float64
	fmax      float64
}

func (w *KinematicWorld) AddBody(spec BodySpec) Body {
	return w.add(spec)
}

func (w *KinematicWorld) AddBall(spec BodySpec) Ball {
	return w.add(spec)
}

func (w *KinematicWorld) add(spec BodySpec) *RigidBody {
	b := &RigidBody{
		spec: spec,
		pos:  spec.Position,
		rot:  normalized(spec.Rotation),
		tag:  -1,
	}
	w.bodies = append(w.bodies, b)
	return b
}

func (w *KinematicWorld) Hinge(parent, child Body, anchor, axis r3.Vector, locked bool) {
	w.attach(parent, child)
}

func (w *KinematicWorld) Fix(parent, child Body) {
	w.attach(parent, child)
}

func (w *KinematicWorld) attach(parent, child Body) {
	p, c := rigid(parent), rigid(child)
	c.parent = p
	c.localPos = ToLocal(p.pos, p.rot, c.pos)
	c.localRot = p.rot.Inverse().Mul(c.rot).Normalize()
}

func (w *KinematicWorld) AngularMotor(parent, child Body, axis r3.Vector) Motor {
	p, c := rigid(parent), rigid(child)
	m := &AngularMotor{
		parent:    p,
		child:     c,
		localAxis: Rotate(p.rot.Inverse(), axis).Normalize(),
	}
	p.motors = append(p.motors, m)
	c.drivenBy = m
	return m
}

func rigid(b Body) *RigidBody {
	rb, ok := b.(*RigidBody)
	if !ok {
		panic(fmt.Sprintf("physics: body %T does not belong to a KinematicWorld", b))
	}
	return rb
}

// Step advances every body by dt. Bodies are stored parents first, so a
// single pass places children on already-advanced parents.
func (w *KinematicWorld) Step(dt float64) {
	for _, b := range w.bodies {
		switch {
		case b.parent != nil:
			b.follow()
		case len(b.motors) > 0:
			b.drive()
			b.pos = b.pos.Add(b.lin.Mul(dt))
			b.rot = Yaw(b.ang.Z * dt).Mul(b.rot).Normalize()
		default:
			w.fly(b, dt)
		}
		b.torque = r3.Vector{}
	}
}

// drive solves the chassis velocity (vx, vy, wz) that best matches the
// rolling speed of every motor with a positive force ceiling. With fewer
// than three active motors the chassis coasts.
func (b *RigidBody) drive() {
	var ata mgl64.Mat3
	var atb mgl64.Vec3
	active := 0
	for _, m := range b.motors {
		if m.fmax <= 0 {
			continue
		}
		axis := Rotate(b.rot, m.localAxis)
		t := r3.Vector{X: -axis.Y, Y: axis.X}.Normalize()
		p := m.child.pos.Sub(b.pos)
		row := mgl64.Vec3{t.X, t.Y, -t.X*p.Y + t.Y*p.X}
		rhs := m.velocity * m.child.spec.Size.X
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				ata.Set(i, j, ata.At(i, j)+row[i]*row[j])
			}
			atb[i] += row[i] * rhs
		}
		active++
	}
	if active < 3 || math.Abs(ata.Det()) < singularEps {
		return
	}
	x := ata.Inv().Mul3x1(atb)
	b.lin = r3.Vector{X: x[0], Y: x[1]}
	b.ang = r3.Vector{Z: x[2]}
}

func (b *RigidBody) follow() {
	p := b.parent
	b.pos = ToWorld(p.pos, p.rot, b.localPos)
	b.rot = p.rot.Mul(b.localRot).Normalize()
	b.lin = p.lin.Add(p.ang.Cross(b.pos.Sub(p.pos)))
	b.ang = p.ang
	if m := b.drivenBy; m != nil {
		b.ang = b.ang.Add(Rotate(p.rot, m.localAxis).Mul(m.velocity))
	}
}

func (w *KinematicWorld) fly(b *RigidBody, dt float64) {
	if inertia := b.inertia(); inertia > 0 {
		b.ang = b.ang.Add(b.torque.Mul(dt / inertia))
	}

	floor := b.clearance()
	grounded := b.pos.Z <= floor+groundEps && b.lin.Z <= 0
	if grounded {
		b.lin.Z = 0
		speed := math.Hypot(b.lin.X, b.lin.Y)
		dec := w.friction * w.gravity * dt
		if speed <= dec {
			b.lin.X, b.lin.Y = 0, 0
		} else {
			k := (speed - dec) / speed
			b.lin.X *= k
			b.lin.Y *= k
		}
	} else {
		b.lin.Z -= w.gravity * dt
	}

	b.pos = b.pos.Add(b.lin.Mul(dt))
	if b.pos.Z < floor {
		b.pos.Z = floor
		if b.lin.Z < 0 {
			b.lin.Z = 0
		}
	}
}

func (b *RigidBody) clearance() float64 {
	switch b.spec.Shape {
	case Sphere:
		return b.spec.Size.X
	default:
		return b.spec.Size.Z / 2
	}
}

func (b *RigidBody) inertia() float64 {
	if b.spec.Shape != Sphere {
		return 0
	}
	r := b.spec.Size.X
	return 0.4 * b.spec.Mass * r * r
}

func (b *RigidBody) Name() string                   { return b.spec.Name }
func (b *RigidBody) Spec() BodySpec                 { return b.spec }
func (b *RigidBody) Position() r3.Vector            { return b.pos }
func (b *RigidBody) SetPosition(p r3.Vector)        { b.pos = p }
func (b *RigidBody) Rotation() mgl64.Quat           { return b.rot }
func (b *RigidBody) SetRotation(q mgl64.Quat)       { b.rot = normalized(q) }
func (b *RigidBody) LinearVelocity() r3.Vector      { return b.lin }
func (b *RigidBody) SetLinearVelocity(v r3.Vector)  { b.lin = v }
func (b *RigidBody) AngularVelocity() r3.Vector     { return b.ang }
func (b *RigidBody) SetAngularVelocity(v r3.Vector) { b.ang = v }
func (b *RigidBody) AddTorque(t r3.Vector)          { b.torque = b.torque.Add(t) }
func (b *RigidBody) LastToucher() int               { return b.tag }
func (b *RigidBody) SetLastToucher(id int)          { b.tag = id }

// Torque is the torque accumulated since the last Step.
func (b *RigidBody) Torque() r3.Vector { return b.torque }

func (m *AngularMotor) SetVelocity(v float64) { m.velocity = v }
func (m *AngularMotor) SetMaxForce(f float64) { m.fmax = f }
func (m *AngularMotor) Velocity() float64     { return m.velocity }
func (m *AngularMotor) MaxForce() float64     { return m.fmax }
