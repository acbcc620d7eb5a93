package automation

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/robosim/internal/metrics"
	"github.com/san-kum/robosim/internal/robot"
	"github.com/san-kum/robosim/internal/scenario"
	"github.com/san-kum/robosim/internal/sim"
)

var ErrInvalidScript = errors.New("automation: invalid script")

// Script is a YAML command timeline: robots to spawn, where the ball
// starts and which command each robot receives over which ticks.
type Script struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Ticks       int          `yaml:"ticks"`
	Robots      []RobotSpawn `yaml:"robots"`
	Ball        BallStart    `yaml:"ball"`
	Steps       []Step       `yaml:"steps"`
	Metrics     []MetricSpec `yaml:"metrics"`

	commands []robot.Command
}

// RobotSpawn places one robot. Dir is the starting heading in degrees.
type RobotSpawn struct {
	ID       int     `yaml:"id"`
	Team     string  `yaml:"team"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Dir      float64 `yaml:"dir"`
	Reversed bool    `yaml:"reversed"`
}

// BallStart rests the ball at (X, Y), or on a robot's paddle when AtKicker
// names one.
type BallStart struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	AtKicker *int    `yaml:"at_kicker"`
}

// Step sends one command to a robot on every tick in [At, Until). A zero
// Until means the single tick At. A step that sets Enable only switches the
// robot on or off at At and sends no command.
type Step struct {
	At       int       `yaml:"at"`
	Until    int       `yaml:"until"`
	Robot    int       `yaml:"robot"`
	Mode     string    `yaml:"mode"`
	VX       float64   `yaml:"vx"`
	VY       float64   `yaml:"vy"`
	W        float64   `yaml:"w"`
	Wheels   []float64 `yaml:"wheels"`
	KickFlat float64   `yaml:"kick_flat"`
	KickChip float64   `yaml:"kick_chip"`
	Spinner  bool      `yaml:"spinner"`
	Enable   *bool     `yaml:"enable"`
}

// MetricSpec names one scoring metric. Robot and the target fields are
// read only by the metrics that need them.
type MetricSpec struct {
	Name    string  `yaml:"name"`
	Robot   int     `yaml:"robot"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Heading float64 `yaml:"heading"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read script %s", path)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "parse script")
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) validate() error {
	if s.Name == "" {
		return errors.Wrap(ErrInvalidScript, "missing name")
	}
	if len(s.Robots) == 0 {
		return errors.Wrapf(ErrInvalidScript, "%s: no robots", s.Name)
	}
	ids := make(map[int]bool, len(s.Robots))
	for _, r := range s.Robots {
		if ids[r.ID] {
			return errors.Wrapf(ErrInvalidScript, "%s: duplicate robot %d", s.Name, r.ID)
		}
		ids[r.ID] = true
		if r.Team != "" && r.Team != "blue" && r.Team != "yellow" {
			return errors.Wrapf(ErrInvalidScript, "%s: robot %d has unknown team %q", s.Name, r.ID, r.Team)
		}
	}
	if k := s.Ball.AtKicker; k != nil && !ids[*k] {
		return errors.Wrapf(ErrInvalidScript, "%s: ball placed at unknown robot %d", s.Name, *k)
	}

	// stable by start tick so later steps win on overlap
	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	s.commands = make([]robot.Command, len(s.Steps))
	for i := range s.Steps {
		st := &s.Steps[i]
		if !ids[st.Robot] {
			return errors.Wrapf(ErrInvalidScript, "%s: step %d targets unknown robot %d", s.Name, i, st.Robot)
		}
		if st.Until == 0 {
			st.Until = st.At + 1
		}
		if st.At < 0 || st.Until <= st.At {
			return errors.Wrapf(ErrInvalidScript, "%s: step %d has empty range [%d, %d)", s.Name, i, st.At, st.Until)
		}
		cmd, err := st.toCommand()
		if err != nil {
			return errors.Wrapf(err, "%s: step %d", s.Name, i)
		}
		s.commands[i] = cmd
	}

	for _, m := range s.Metrics {
		if _, ok := metricBuilders[m.Name]; !ok {
			return errors.Wrapf(ErrInvalidScript, "%s: unknown metric %q", s.Name, m.Name)
		}
	}
	return nil
}

func (st Step) toCommand() (robot.Command, error) {
	cmd := robot.Command{
		VX:       st.VX,
		VY:       st.VY,
		W:        st.W,
		KickFlat: st.KickFlat,
		KickChip: st.KickChip,
		Spinner:  st.Spinner,
	}
	if st.Mode != "" {
		m, ok := robot.ParseDriveMode(st.Mode)
		if !ok {
			return cmd, errors.Wrapf(ErrInvalidScript, "unknown drive mode %q", st.Mode)
		}
		cmd.Mode = m
	}
	if len(st.Wheels) > robot.NumWheels {
		return cmd, errors.Wrapf(ErrInvalidScript, "%d wheel speeds for %d wheels", len(st.Wheels), robot.NumWheels)
	}
	copy(cmd.Wheels[:], st.Wheels)
	return cmd, nil
}

func (st Step) active(tick int) bool { return tick >= st.At && tick < st.Until }

// Drive submits the commands of every step active at tick. Enable steps
// apply first so a robot switched on can act the same tick.
func (s *Script) Drive(a *sim.Arena, tick int) {
	for _, st := range s.Steps {
		if st.Enable == nil || tick != st.At {
			continue
		}
		if r := a.Robot(st.Robot); r != nil {
			r.SetEnabled(*st.Enable)
		}
	}
	for i, st := range s.Steps {
		if st.Enable != nil || !st.active(tick) {
			continue
		}
		if r := a.Robot(st.Robot); r != nil {
			r.Submit(s.commands[i])
		}
	}
}

func (s *Script) setup(a *sim.Arena, _ scenario.Params, _ int) (sim.Driver, []sim.Metric) {
	for _, sp := range s.Robots {
		team := robot.Blue
		if sp.Team == "yellow" {
			team = robot.Yellow
		}
		r := a.AddRobot(robot.Spawn{ID: sp.ID, Team: team, X: sp.X, Y: sp.Y, Reversed: sp.Reversed})
		if sp.Dir != 0 {
			r.SetDir(sp.Dir)
		}
	}
	if k := s.Ball.AtKicker; k != nil {
		a.PlaceBallAtKicker(a.Robot(*k))
	} else {
		a.PlaceBall(s.Ball.X, s.Ball.Y)
	}

	ms := make([]sim.Metric, 0, len(s.Metrics))
	for _, spec := range s.Metrics {
		ms = append(ms, metricBuilders[spec.Name](a, spec))
	}
	return s, ms
}

// Scenario wraps the script so it can be registered and run like a
// built-in scenario. Scenario params are ignored.
func (s *Script) Scenario() *scenario.Scenario {
	ticks := s.Ticks
	if ticks <= 0 {
		ticks = s.lastTick()
	}
	return &scenario.Scenario{
		Name:        s.Name,
		Description: s.Description,
		Ticks:       ticks,
		Setup:       s.setup,
	}
}

func (s *Script) lastTick() int {
	last := 1
	for _, st := range s.Steps {
		if st.Until > last {
			last = st.Until
		}
	}
	return last
}

var metricBuilders = map[string]func(*sim.Arena, MetricSpec) sim.Metric{
	"control_effort":  func(_ *sim.Arena, m MetricSpec) sim.Metric { return metrics.NewControlEffort(m.Robot) },
	"heading_error":   func(_ *sim.Arena, m MetricSpec) sim.Metric { return metrics.NewHeadingError(m.Robot, m.Heading) },
	"target_distance": func(_ *sim.Arena, m MetricSpec) sim.Metric { return metrics.NewTargetDistance(m.Robot, m.X, m.Y) },
	"possession":      func(_ *sim.Arena, m MetricSpec) sim.Metric { return metrics.NewPossession(m.Robot) },
	"peak_ball_speed": func(*sim.Arena, MetricSpec) sim.Metric { return metrics.NewPeakBallSpeed() },
	"ball_energy":     newBallEnergy,
}

func newBallEnergy(a *sim.Arena, _ MetricSpec) sim.Metric {
	bc := a.Config().Ball
	return metrics.NewBallEnergy(bc.Mass, bc.Radius, a.Config().World.Gravity)
}
