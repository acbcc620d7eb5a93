package metrics

import "github.com/san-kum/robosim/internal/sim"

// Possession is the fraction of ticks one robot has the ball on its paddle
// and was the last to touch it.
type Possession struct {
	name    string
	robot   int
	held    int
	samples int
}

func NewPossession(robot int) *Possession {
	return &Possession{name: "possession", robot: robot}
}

func (p *Possession) Name() string { return p.name }

func (p *Possession) Observe(f sim.Frame) {
	s, ok := f.Robot(p.robot)
	if !ok {
		return
	}
	p.samples++
	if s.Touching && f.Ball.LastToucher == p.robot {
		p.held++
	}
}

func (p *Possession) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return float64(p.held) / float64(p.samples)
}

func (p *Possession) Reset() {
	p.held = 0
	p.samples = 0
}
