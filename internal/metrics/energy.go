package metrics

import "github.com/san-kum/robosim/internal/sim"

// BallEnergy is the mean mechanical energy of the ball, kinetic plus
// potential above its resting height.
type BallEnergy struct {
	name    string
	mass    float64
	radius  float64
	gravity float64
	samples int
	total   float64
}

func NewBallEnergy(mass, radius, gravity float64) *BallEnergy {
	return &BallEnergy{
		name:    "ball_energy",
		mass:    mass,
		radius:  radius,
		gravity: gravity,
	}
}

func (e *BallEnergy) Name() string { return e.name }

func (e *BallEnergy) Observe(f sim.Frame) {
	v := f.Ball.Speed()
	ke := 0.5 * e.mass * v * v
	pe := e.mass * e.gravity * (f.Ball.Z - e.radius)
	e.total += ke + pe
	e.samples++
}

func (e *BallEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *BallEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// PeakBallSpeed is the highest ball speed seen during a run.
type PeakBallSpeed struct {
	name string
	peak float64
}

func NewPeakBallSpeed() *PeakBallSpeed {
	return &PeakBallSpeed{name: "peak_ball_speed"}
}

func (p *PeakBallSpeed) Name() string { return p.name }

func (p *PeakBallSpeed) Observe(f sim.Frame) {
	if v := f.Ball.Speed(); v > p.peak {
		p.peak = v
	}
}

func (p *PeakBallSpeed) Value() float64 { return p.peak }

func (p *PeakBallSpeed) Reset() { p.peak = 0 }
