package robot

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/physics"
)

const headingEps = 1e-9

// Parts is the shared read-only handle wheels and the kicker are built on.
// It is created once by New and never mutated afterwards.
type Parts struct {
	ID      int
	Config  *config.Config
	Chassis physics.Body
	Ball    physics.Ball
	Logger  golog.Logger
}

// heading is the chassis forward axis projected on the ground plane and
// normalized. ok is false when the chassis points straight up or down.
func (p *Parts) heading() (r3.Vector, bool) {
	f := physics.Forward(p.Chassis)
	n := math.Hypot(f.X, f.Y)
	if n < headingEps {
		return r3.Vector{}, false
	}
	return r3.Vector{X: f.X / n, Y: f.Y / n}, true
}

// place puts a rigidly mounted body back on the chassis at its local pose.
func (p *Parts) place(b physics.Body, local r3.Vector, localRot mgl64.Quat) {
	rot := p.Chassis.Rotation()
	b.SetPosition(physics.ToWorld(p.Chassis.Position(), rot, local))
	b.SetRotation(rot.Mul(localRot))
}
