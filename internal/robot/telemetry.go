package robot

import "github.com/san-kum/robosim/internal/kinematics"

// Snapshot is the per-tick telemetry record of a robot.
type Snapshot struct {
	ID       int
	Team     Team
	Enabled  bool
	X, Y     float64
	Dir      float64
	VX, VY   float64
	W        float64
	Wheels   [NumWheels]float64
	Kicker   KickerMode
	Roller   int
	Touching bool
	Policy   kinematics.RotationPolicy
	// Commanded body velocity recovered from the wheel targets.
	CmdVX, CmdVY, CmdW float64
}

func (r *Robot) Snapshot() Snapshot {
	x, y := r.XY()
	lin := r.parts.Chassis.LinearVelocity()
	ws := r.Speeds()
	cvx, cvy, cw := r.mapper.Forward(ws)
	return Snapshot{
		ID:       r.parts.ID,
		Team:     r.team,
		Enabled:  r.on,
		X:        x,
		Y:        y,
		Dir:      r.Dir(),
		VX:       lin.X,
		VY:       lin.Y,
		W:        r.parts.Chassis.AngularVelocity().Z,
		Wheels:   ws,
		Kicker:   r.kicker.Mode(),
		Roller:   r.kicker.Roller(),
		Touching: r.kicker.IsTouchingBall(),
		Policy:   r.policy,
		CmdVX:    cvx,
		CmdVY:    cvy,
		CmdW:     cw,
	}
}
