package metrics

import (
	"math"

	"github.com/san-kum/robosim/internal/control"
	"github.com/san-kum/robosim/internal/sim"
)

// HeadingError is the RMS heading error in radians of one robot against a
// fixed target heading.
type HeadingError struct {
	name    string
	robot   int
	target  float64
	sumSq   float64
	samples int
}

func NewHeadingError(robot int, target float64) *HeadingError {
	return &HeadingError{
		name:   "heading_error",
		robot:  robot,
		target: target,
	}
}

func (h *HeadingError) Name() string { return h.name }

func (h *HeadingError) Observe(f sim.Frame) {
	s, ok := f.Robot(h.robot)
	if !ok {
		return
	}
	e := control.ConstrainAngle(h.target - s.Dir*math.Pi/180)
	h.sumSq += e * e
	h.samples++
}

func (h *HeadingError) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return math.Sqrt(h.sumSq / float64(h.samples))
}

func (h *HeadingError) Reset() {
	h.sumSq = 0
	h.samples = 0
}

// TargetDistance is the distance of one robot from a point at the last
// observed tick.
type TargetDistance struct {
	name  string
	robot int
	x, y  float64
	last  float64
}

func NewTargetDistance(robot int, x, y float64) *TargetDistance {
	return &TargetDistance{name: "target_distance", robot: robot, x: x, y: y}
}

func (d *TargetDistance) Name() string { return d.name }

func (d *TargetDistance) Observe(f sim.Frame) {
	if s, ok := f.Robot(d.robot); ok {
		d.last = math.Hypot(s.X-d.x, s.Y-d.y)
	}
}

func (d *TargetDistance) Value() float64 { return d.last }

func (d *TargetDistance) Reset() { d.last = 0 }
