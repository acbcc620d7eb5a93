package sim

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/physics"
	"github.com/san-kum/robosim/internal/robot"
)

// Arena is one physics world with its shared ball and robots.
type Arena struct {
	cfg    *config.Config
	engine physics.Engine
	ball   physics.Ball
	robots []*robot.Robot
	log    golog.Logger
}

// NewArena builds an arena on the reference kinematic world with the ball
// resting at the origin.
func NewArena(cfg *config.Config, log golog.Logger) *Arena {
	engine := physics.NewKinematicWorld(cfg.World.Gravity, cfg.Ball.RollingFriction)
	return NewArenaOn(engine, cfg, log)
}

// NewArenaOn builds an arena on an external engine.
func NewArenaOn(engine physics.Engine, cfg *config.Config, log golog.Logger) *Arena {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ball := engine.AddBall(physics.BodySpec{
		Name:     "ball",
		Shape:    physics.Sphere,
		Size:     r3.Vector{X: cfg.Ball.Radius},
		Mass:     cfg.Ball.Mass,
		Position: r3.Vector{Z: cfg.Ball.Radius},
	})
	return &Arena{cfg: cfg, engine: engine, ball: ball, log: log}
}

func (a *Arena) AddRobot(spawn robot.Spawn) *robot.Robot {
	r := robot.New(a.engine, a.ball, a.cfg, spawn, robot.WithLogger(a.log.With("robot", spawn.ID)))
	a.robots = append(a.robots, r)
	return r
}

// Robot returns the robot with the given id, or nil.
func (a *Arena) Robot(id int) *robot.Robot {
	for _, r := range a.robots {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

func (a *Arena) Robots() []*robot.Robot { return a.robots }
func (a *Arena) Ball() physics.Ball     { return a.ball }
func (a *Arena) Config() *config.Config { return a.cfg }

// PlaceBall puts the ball at rest on the ground.
func (a *Arena) PlaceBall(x, y float64) {
	a.ball.SetPosition(r3.Vector{X: x, Y: y, Z: a.cfg.Ball.Radius})
	a.ball.SetLinearVelocity(r3.Vector{})
	a.ball.SetAngularVelocity(r3.Vector{})
}

// PlaceBallAtKicker rests the ball just in front of a robot's paddle.
func (a *Arena) PlaceBallAtKicker(r *robot.Robot) {
	c := r.Kicker().ContactCenter()
	f := physics.Forward(r.Chassis())
	n := math.Hypot(f.X, f.Y)
	if n == 0 {
		n = 1
	}
	off := a.cfg.Ball.Radius
	a.PlaceBall(c.X+f.X/n*off, c.Y+f.Y/n*off)
}

func (a *Arena) step() {
	for _, r := range a.robots {
		r.Step()
	}
	a.engine.Step(a.cfg.DeltaTime())
}

func (a *Arena) frame(tick int) Frame {
	p, v := a.ball.Position(), a.ball.LinearVelocity()
	f := Frame{
		Tick: tick,
		Time: float64(tick) * a.cfg.DeltaTime(),
		Ball: BallState{
			X: p.X, Y: p.Y, Z: p.Z,
			VX: v.X, VY: v.Y, VZ: v.Z,
			LastToucher: a.ball.LastToucher(),
		},
		Robots: make([]robot.Snapshot, len(a.robots)),
	}
	for i, r := range a.robots {
		f.Robots[i] = r.Snapshot()
	}
	return f
}

func hypot3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
