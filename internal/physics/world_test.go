package physics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/san-kum/robosim/internal/kinematics"
)

const dt = 1.0 / 65

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestFrameRoundTrip(t *testing.T) {
	pos := r3.Vector{X: 1, Y: -2, Z: 0.3}
	rot := Yaw(0.7).Mul(AxisAngle(UnitX, 0.2))
	p := r3.Vector{X: 0.4, Y: 0.1, Z: -0.5}

	back := ToWorld(pos, rot, ToLocal(pos, rot, p))
	if back.Sub(p).Norm() > 1e-12 {
		t.Errorf("expected %v, got %v", p, back)
	}
}

func TestForwardFollowsYaw(t *testing.T) {
	w := NewKinematicWorld(StandardGravity, 0)
	b := w.AddBody(BodySpec{Shape: Box, Size: r3.Vector{X: 1, Y: 1, Z: 1}, Rotation: Yaw(math.Pi / 2)})
	f := Forward(b)
	if !near(f.X, 0, 1e-12) || !near(f.Y, 1, 1e-12) {
		t.Errorf("expected forward (0,1,0), got %v", f)
	}
}

func TestZeroQuaternionIsIdentity(t *testing.T) {
	w := NewKinematicWorld(StandardGravity, 0)
	b := w.AddBody(BodySpec{Shape: Box, Size: r3.Vector{X: 1, Y: 1, Z: 1}})
	if f := Forward(b); !near(f.X, 1, 1e-12) {
		t.Errorf("expected identity rotation, got forward %v", f)
	}
}

func TestBallRestsOnGround(t *testing.T) {
	w := NewKinematicWorld(StandardGravity, 0.35)
	ball := w.AddBall(BodySpec{Shape: Sphere, Size: r3.Vector{X: 0.0215}, Mass: 0.043, Position: r3.Vector{Z: 0.0215}})
	for i := 0; i < 100; i++ {
		w.Step(dt)
	}
	if p := ball.Position(); p != (r3.Vector{Z: 0.0215}) {
		t.Errorf("expected ball at rest, got %v", p)
	}
	if ball.LastToucher() != -1 {
		t.Errorf("expected untouched ball, got %d", ball.LastToucher())
	}
}

func TestBallFlightLands(t *testing.T) {
	w := NewKinematicWorld(StandardGravity, 0.35)
	ball := w.AddBall(BodySpec{Shape: Sphere, Size: r3.Vector{X: 0.0215}, Mass: 0.043, Position: r3.Vector{Z: 0.0215}})
	ball.SetLinearVelocity(r3.Vector{X: 2, Z: 2})

	peak := 0.0
	for i := 0; i < 200; i++ {
		w.Step(dt)
		peak = math.Max(peak, ball.Position().Z)
	}
	if peak < 0.15 {
		t.Errorf("expected the ball to leave the ground, peak %f", peak)
	}
	if got := ball.Position().Z; !near(got, 0.0215, 1e-12) {
		t.Errorf("expected ball back on the ground, z = %f", got)
	}
	if v := ball.LinearVelocity(); v.Norm() != 0 {
		t.Errorf("expected friction to stop the ball, got %v", v)
	}
}

func TestRollingFrictionDecelerates(t *testing.T) {
	w := NewKinematicWorld(StandardGravity, 0.35)
	ball := w.AddBall(BodySpec{Shape: Sphere, Size: r3.Vector{X: 0.0215}, Mass: 0.043, Position: r3.Vector{Z: 0.0215}})
	ball.SetLinearVelocity(r3.Vector{X: 3})
	w.Step(dt)
	want := 3 - 0.35*StandardGravity*dt
	if got := ball.LinearVelocity().X; !near(got, want, 1e-12) {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestTorqueSpinsBall(t *testing.T) {
	w := NewKinematicWorld(StandardGravity, 0)
	ball := w.AddBall(BodySpec{Shape: Sphere, Size: r3.Vector{X: 0.0215}, Mass: 0.043, Position: r3.Vector{Z: 0.0215}})
	ball.AddTorque(r3.Vector{Y: -0.001})
	ball.AddTorque(r3.Vector{Y: -0.001})
	if got := ball.(*RigidBody).Torque().Y; got != -0.002 {
		t.Errorf("expected accumulated torque -0.002, got %f", got)
	}
	w.Step(dt)
	if ball.AngularVelocity().Y >= 0 {
		t.Errorf("expected negative spin about y, got %v", ball.AngularVelocity())
	}
	if got := ball.(*RigidBody).Torque(); got != (r3.Vector{}) {
		t.Errorf("expected torque cleared after step, got %v", got)
	}
}

func TestFixedChildFollowsParent(t *testing.T) {
	w := NewKinematicWorld(0, 0)
	parent := w.AddBody(BodySpec{Shape: Cylinder, Size: r3.Vector{X: 0.09, Z: 0.13}, Position: r3.Vector{Z: 0.085}})
	child := w.AddBody(BodySpec{Shape: Box, Size: r3.Vector{X: 0.005, Y: 0.08, Z: 0.04}, Position: r3.Vector{X: 0.08, Z: 0.04}})
	w.Fix(parent, child)

	parent.SetRotation(Yaw(math.Pi / 2))
	parent.SetPosition(r3.Vector{X: 1, Z: 0.085})
	w.Step(dt)

	p := child.Position()
	if !near(p.X, 1, 1e-9) || !near(p.Y, 0.08, 1e-9) || !near(p.Z, 0.04, 1e-9) {
		t.Errorf("expected child at (1, 0.08, 0.04), got %v", p)
	}
}

// buildChassis mounts four motored wheels at lever radius r.
func buildChassis(w *KinematicWorld, anglesDeg [4]float64, r, wheelR float64) (Body, [4]Motor) {
	chassis := w.AddBody(BodySpec{Shape: Cylinder, Size: r3.Vector{X: 0.09, Z: 0.13}, Position: r3.Vector{Z: 0.085}})
	var motors [4]Motor
	for i, deg := range anglesDeg {
		a := deg * math.Pi / 180
		axis := r3.Vector{X: math.Cos(a), Y: math.Sin(a)}
		wheel := w.AddBody(BodySpec{
			Shape:    Cylinder,
			Size:     r3.Vector{X: wheelR, Z: 0.005},
			Position: r3.Vector{X: r * math.Cos(a), Y: r * math.Sin(a), Z: wheelR},
			Rotation: AxisAngle(UnitY, math.Pi/2),
		})
		w.Hinge(chassis, wheel, wheel.Position(), axis, false)
		motors[i] = w.AngularMotor(chassis, wheel, axis)
		motors[i].SetMaxForce(0.2)
	}
	return chassis, motors
}

func TestMotorsDriveChassis(t *testing.T) {
	angles := [4]float64{60, 135, 225, 300}
	const r, wheelR = 0.09, 0.0325
	m := kinematics.NewMapper(angles, r, wheelR)

	tests := []struct {
		name       string
		vx, vy, wz float64
	}{
		{"forward", 1, 0, 0},
		{"sideways", 0, -0.5, 0},
		{"spin", 0, 0, 2},
		{"mixed", 0.3, 0.4, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewKinematicWorld(StandardGravity, 0)
			chassis, motors := buildChassis(w, angles, r, wheelR)
			ws := m.Wheels(tt.vx, tt.vy, tt.wz)
			for i := range motors {
				motors[i].SetVelocity(ws[i])
			}
			w.Step(dt)

			v, av := chassis.LinearVelocity(), chassis.AngularVelocity()
			if !near(v.X, tt.vx, 1e-9) || !near(v.Y, tt.vy, 1e-9) || !near(av.Z, tt.wz, 1e-9) {
				t.Errorf("expected (%f,%f,%f), got (%f,%f,%f)", tt.vx, tt.vy, tt.wz, v.X, v.Y, av.Z)
			}
		})
	}
}

func TestChassisCoastsWithoutForce(t *testing.T) {
	w := NewKinematicWorld(StandardGravity, 0)
	chassis, motors := buildChassis(w, [4]float64{60, 135, 225, 300}, 0.09, 0.0325)
	for i := range motors {
		motors[i].SetVelocity(10)
		motors[i].SetMaxForce(0)
	}
	w.Step(dt)
	if v := chassis.LinearVelocity(); v.Norm() != 0 {
		t.Errorf("expected a disabled drivetrain to coast, got %v", v)
	}
}

func TestForeignBodyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a body from another engine")
		}
	}()
	w := NewKinematicWorld(StandardGravity, 0)
	w.Fix(w.AddBody(BodySpec{}), struct{ Body }{})
}
