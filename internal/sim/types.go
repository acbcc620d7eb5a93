package sim

import "github.com/san-kum/robosim/internal/robot"

type BallState struct {
	X, Y, Z     float64
	VX, VY, VZ  float64
	LastToucher int
}

func (b BallState) Speed() float64 {
	return hypot3(b.VX, b.VY, b.VZ)
}

// Frame is the arena state after one tick.
type Frame struct {
	Tick   int
	Time   float64
	Ball   BallState
	Robots []robot.Snapshot
}

// Robot returns the snapshot of robot id, or false when it is not present.
func (f Frame) Robot(id int) (robot.Snapshot, bool) {
	for _, s := range f.Robots {
		if s.ID == id {
			return s, true
		}
	}
	return robot.Snapshot{}, false
}

// Driver issues robot commands before each tick. It may only call Submit
// and the direct robot controls; the simulator steps the robots.
type Driver interface {
	Drive(a *Arena, tick int)
}

type DriverFunc func(a *Arena, tick int)

func (f DriverFunc) Drive(a *Arena, tick int) { f(a, tick) }

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type Config struct {
	Ticks int
	// Record keeps every frame in the result.
	Record bool
}

type Result struct {
	Frames     []Frame
	Final      Frame
	Metrics    map[string]float64
	TicksTaken int
}
