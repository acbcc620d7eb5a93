package scenario

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/robosim/internal/metrics"
	"github.com/san-kum/robosim/internal/robot"
	"github.com/san-kum/robosim/internal/sim"
)

var ErrUnknownScenario = errors.New("scenario: unknown scenario")

type Registry struct {
	scenarios map[string]*Scenario
}

// NewRegistry returns a registry holding the built-in scenarios.
func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]*Scenario)}
	for _, sc := range builtin() {
		r.Register(sc)
	}
	return r
}

func (r *Registry) Register(sc *Scenario) { r.scenarios[sc.Name] = sc }

func (r *Registry) Get(name string) (*Scenario, error) {
	sc, ok := r.scenarios[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownScenario, "%q", name)
	}
	return sc, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func builtin() []*Scenario {
	return []*Scenario{
		{
			Name:        "drive",
			Description: "drive straight at a fixed body velocity",
			Ticks:       130,
			Setup:       setupDrive,
		},
		{
			Name:        "turn",
			Description: "turn in place to a target heading with the PD loop",
			Ticks:       195,
			Setup:       setupTurn,
		},
		{
			Name:        "dribble",
			Description: "hold the ball on the paddle with the roller on",
			Ticks:       130,
			Setup:       setupDribble,
		},
		{
			Name:        "kick",
			Description: "flat kick a ball resting on the paddle",
			Ticks:       65,
			Setup:       setupKick(false),
		},
		{
			Name:        "chip",
			Description: "chip kick a ball resting on the paddle",
			Ticks:       65,
			Setup:       setupKick(true),
		},
		{
			Name:        "square",
			Description: "trace a one metre square holding heading zero",
			Ticks:       260,
			Setup:       setupSquare,
		},
		{
			Name:        "reversed",
			Description: "a reversed yellow robot turns away from its mirrored start",
			Ticks:       195,
			Setup:       setupReversed,
		},
		{
			Name:        "disable",
			Description: "drive forward and switch the robot off halfway",
			Ticks:       130,
			Setup:       setupDisable,
		},
	}
}

func setupDrive(a *sim.Arena, p Params, ticks int) (sim.Driver, []sim.Metric) {
	a.AddRobot(robot.Spawn{ID: 0})
	vx, vy := p.Get("vx", 1), p.Get("vy", 0)
	w := p.Get("w", 0)

	t := float64(ticks) * a.Config().DeltaTime()
	drive := sim.DriverFunc(func(a *sim.Arena, _ int) {
		a.Robot(0).Submit(robot.Command{Mode: robot.DriveVelocity, VX: vx, VY: vy, W: w})
	})
	return drive, []sim.Metric{
		metrics.NewControlEffort(0),
		metrics.NewTargetDistance(0, vx*t, vy*t),
	}
}

func setupTurn(a *sim.Arena, p Params, _ int) (sim.Driver, []sim.Metric) {
	a.AddRobot(robot.Spawn{ID: 0})
	target := p.Get("heading", math.Pi/2)

	drive := sim.DriverFunc(func(a *sim.Arena, _ int) {
		a.Robot(0).Submit(robot.Command{Mode: robot.DriveHeading, W: target})
	})
	return drive, []sim.Metric{
		metrics.NewHeadingError(0, target),
		metrics.NewControlEffort(0),
	}
}

func setupDribble(a *sim.Arena, p Params, _ int) (sim.Driver, []sim.Metric) {
	r := a.AddRobot(robot.Spawn{ID: 0})
	a.PlaceBallAtKicker(r)
	vx := p.Get("vx", 0)

	drive := sim.DriverFunc(func(a *sim.Arena, _ int) {
		a.Robot(0).Submit(robot.Command{Mode: robot.DriveVelocity, VX: vx, Spinner: true})
	})
	return drive, []sim.Metric{
		metrics.NewPossession(0),
		metrics.NewControlEffort(0),
	}
}

func setupKick(chip bool) func(*sim.Arena, Params, int) (sim.Driver, []sim.Metric) {
	return func(a *sim.Arena, p Params, _ int) (sim.Driver, []sim.Metric) {
		r := a.AddRobot(robot.Spawn{ID: 0})
		a.PlaceBallAtKicker(r)
		speed := p.Get("speed", 4)

		cmd := robot.Command{KickFlat: speed}
		if chip {
			cmd = robot.Command{KickChip: speed}
		}
		drive := sim.DriverFunc(func(a *sim.Arena, tick int) {
			if tick == 0 {
				a.Robot(0).Submit(cmd)
			}
		})

		bc := a.Config().Ball
		return drive, []sim.Metric{
			metrics.NewPeakBallSpeed(),
			metrics.NewBallEnergy(bc.Mass, bc.Radius, a.Config().World.Gravity),
		}
	}
}

func setupSquare(a *sim.Arena, p Params, ticks int) (sim.Driver, []sim.Metric) {
	a.AddRobot(robot.Spawn{ID: 0})
	side := p.Get("side", 1)

	leg := ticks / 4
	if leg == 0 {
		leg = 1
	}
	speed := side / (float64(leg) * a.Config().DeltaTime())
	legs := [4][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

	drive := sim.DriverFunc(func(a *sim.Arena, tick int) {
		d := legs[(tick/leg)%4]
		a.Robot(0).Submit(robot.Command{Mode: robot.DriveHeading, VX: d[0] * speed, VY: d[1] * speed})
	})
	return drive, []sim.Metric{
		metrics.NewTargetDistance(0, 0, 0),
		metrics.NewHeadingError(0, 0),
		metrics.NewControlEffort(0),
	}
}

func setupReversed(a *sim.Arena, p Params, _ int) (sim.Driver, []sim.Metric) {
	a.AddRobot(robot.Spawn{ID: 0, Team: robot.Blue, X: -1})
	a.AddRobot(robot.Spawn{ID: 1, Team: robot.Yellow, X: 1, Reversed: true})
	target := p.Get("heading", math.Pi/2)

	drive := sim.DriverFunc(func(a *sim.Arena, _ int) {
		a.Robot(1).Submit(robot.Command{Mode: robot.DriveHeading, W: target})
	})
	return drive, []sim.Metric{
		metrics.NewHeadingError(1, target),
		metrics.NewControlEffort(1),
	}
}

func setupDisable(a *sim.Arena, p Params, ticks int) (sim.Driver, []sim.Metric) {
	a.AddRobot(robot.Spawn{ID: 0})
	vx := p.Get("vx", 1)
	off := int(p.Get("off_tick", float64(ticks/2)))

	drive := sim.DriverFunc(func(a *sim.Arena, tick int) {
		r := a.Robot(0)
		if tick == off {
			r.SetEnabled(false)
		}
		r.Submit(robot.Command{Mode: robot.DriveVelocity, VX: vx})
	})
	t := float64(off) * a.Config().DeltaTime()
	return drive, []sim.Metric{
		metrics.NewTargetDistance(0, vx*t, 0),
		metrics.NewControlEffort(0),
	}
}
