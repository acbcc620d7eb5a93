package metrics

import (
	"math"

	"github.com/san-kum/robosim/internal/sim"
)

// ControlEffort is the mean over ticks of the summed absolute wheel speed
// commands of one robot.
type ControlEffort struct {
	name    string
	robot   int
	sum     float64
	samples int
}

func NewControlEffort(robot int) *ControlEffort {
	return &ControlEffort{
		name:  "control_effort",
		robot: robot,
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(f sim.Frame) {
	s, ok := f.Robot(c.robot)
	if !ok {
		return
	}
	for _, w := range s.Wheels {
		c.sum += math.Abs(w)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
