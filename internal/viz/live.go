package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/robosim/internal/kinematics"
	"github.com/san-kum/robosim/internal/robot"
	"github.com/san-kum/robosim/internal/scenario"
	"github.com/san-kum/robosim/internal/sim"
)

const (
	width           = 64
	height          = 24
	historyCapacity = 600
	trailCapacity   = 120
	defaultScale    = 30.0
)

// Build returns a fresh trial; the live view calls it again on reset.
type Build func() (*scenario.Trial, error)

type TickMsg time.Time

// Model steps one scenario per tick message and draws the field top-down.
type Model struct {
	build         Build
	trial         *scenario.Trial
	sim           *sim.Simulator
	name          string
	limit         int
	width, height int
	canvas        *Canvas
	scale         float64
	running       bool
	frame         sim.Frame
	history       []sim.Frame
	playHead      int
	focus         int
	trail         [][2]float64
	headings      []float64
	ballSpeeds    []float64
	showHelp      bool
	err           error
}

func NewModel(name string, build Build) (Model, error) {
	m := Model{
		build:    build,
		name:     name,
		width:    width,
		height:   height,
		canvas:   NewCanvas(width, height),
		scale:    defaultScale,
		playHead: -1,
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/65, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			if n := len(m.frame.Robots); n > 0 {
				m.focus = (m.focus + 1) % n
				m.headings = m.headings[:0]
			}
		case "+", "=":
			m.scale = math.Min(200, m.scale*1.2)
		case "-", "_":
			m.scale = math.Max(5, m.scale/1.2)
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() error {
	trial, err := m.build()
	if err != nil {
		return err
	}
	m.trial = trial
	m.sim = trial.Simulator()
	m.limit = trial.SimConfig().Ticks
	m.frame = sim.Frame{}
	m.history = m.history[:0]
	m.trail = m.trail[:0]
	m.headings = m.headings[:0]
	m.ballSpeeds = m.ballSpeeds[:0]
	m.playHead = -1
	m.focus = 0
	m.running = true
	m.err = nil
	return nil
}

// step advances the scenario one tick until its length is reached.
func (m *Model) step() {
	if m.Done() {
		m.running = false
		return
	}
	m.frame = m.sim.Step()

	m.history = appendCapped(m.history, m.frame, historyCapacity)
	m.trail = appendCapped(m.trail, [2]float64{m.frame.Ball.X, m.frame.Ball.Y}, trailCapacity)
	m.ballSpeeds = appendCapped(m.ballSpeeds, m.frame.Ball.Speed(), historyCapacity)
	if m.focus < len(m.frame.Robots) {
		m.headings = appendCapped(m.headings, m.frame.Robots[m.focus].Dir, historyCapacity)
	}
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[1:]
	}
	return s
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m Model) Done() bool { return m.sim.Tick() >= m.limit }

func (m Model) Frame() sim.Frame { return m.frame }

// shown is the frame on screen: the replay frame while scrubbing.
func (m Model) shown() sim.Frame {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.frame
}

// project maps field metres to canvas sub-pixels, origin at the center and
// y up.
func (m Model) project(x, y float64) (int, int) {
	cw, ch := m.width*2, m.height*4
	return cw/2 + int(math.Round(x*m.scale)), ch/2 - int(math.Round(y*m.scale))
}

func (m Model) draw(f sim.Frame) {
	m.canvas.Clear()

	for _, p := range m.trail {
		m.canvas.Set(m.project(p[0], p[1]))
	}

	cfg := m.trial.Config().Robot
	rr := int(math.Max(2, math.Round(cfg.Robot.RobotRadius*m.scale)))
	for _, r := range f.Robots {
		cx, cy := m.project(r.X, r.Y)
		m.canvas.DrawCircle(cx, cy, rr)
		a := r.Dir * math.Pi / 180
		hx, hy := m.project(r.X+math.Cos(a)*cfg.Robot.RobotRadius*1.4, r.Y+math.Sin(a)*cfg.Robot.RobotRadius*1.4)
		m.canvas.DrawLine(cx, cy, hx, hy)
	}

	bx, by := m.project(f.Ball.X, f.Ball.Y)
	m.canvas.DrawCircle(bx, by, int(math.Max(1, math.Round(cfg.Ball.Radius*m.scale))))
}

func (m Model) status() string {
	switch {
	case m.playHead != -1:
		back := m.history[m.playHead].Time - m.history[len(m.history)-1].Time
		if m.running {
			return StatusRunning.Render(fmt.Sprintf("REPLAYING (%.1fs)", back))
		}
		return StatusPaused.Render(fmt.Sprintf("REPLAY PAUSED (%.1fs)", back))
	case m.Done():
		return StatusDone.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render("RUNNING")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	f := m.shown()
	m.draw(f)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n")
	if m.err != nil {
		s.WriteString(StatusDone.Render(m.err.Error()) + "\n")
	}
	progress := 0.0
	if m.limit > 0 {
		progress = float64(f.Tick) / float64(m.limit)
	}
	s.WriteString(ProgressBar(progress, 30) + "\n\n")

	if len(m.headings) > 1 {
		chart := asciigraph.Plot(m.headings, asciigraph.Height(4), asciigraph.Width(36), asciigraph.Caption("Heading (deg)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.ballSpeeds) > 1 {
		chart := asciigraph.Plot(m.ballSpeeds, asciigraph.Height(3), asciigraph.Width(36), asciigraph.Caption("Ball speed (m/s)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d / %d", f.Tick, m.limit)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", f.Time)) + "\n")
	ballStyle := lipgloss.NewStyle().Foreground(CurrentTheme.Ball)
	s.WriteString(labelStyle.Render("Ball") + ballStyle.Render(fmt.Sprintf("(%.2f, %.2f) %.2fm/s", f.Ball.X, f.Ball.Y, f.Ball.Speed())) + "\n")

	s.WriteString("\nROBOTS\n")
	limit := m.trial.Config().Robot.Control.MaxWheelSpeed
	if limit == 0 {
		limit = kinematics.MaxMotorSpeed
	}
	for i, r := range f.Robots {
		marker := "  "
		if i == m.focus {
			marker = "> "
		}
		tag := teamStyle(r.Team == robot.Blue).Render(fmt.Sprintf("%s%d", strings.ToUpper(r.Team.String()[:1]), r.ID))
		state := r.Kicker.String()
		if !r.Enabled {
			state = "off"
		} else if r.Touching {
			state += " *"
		}
		s.WriteString(fmt.Sprintf("%s%s %6.2f %6.2f %7.1f° %s %s\n", marker, tag, r.X, r.Y, r.Dir, WheelBars(r.Wheels[:], limit), state))
	}

	if vals := m.sim.MetricValues(); len(vals) > 0 {
		s.WriteString("\nMETRICS\n")
		names := make([]string, 0, len(vals))
		for k := range vals {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			s.WriteString(labelStyle.Render(k) + valueStyle.Render(fmt.Sprintf("%.4f", vals[k])) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nTab:Robot T:Theme ?:Help\n[ ]:Replay +-:Zoom"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart the scenario     ║
║  Q        - Quit                     ║
║  Tab      - Focus next robot         ║
║  + / -    - Zoom the field           ║
║  [ / ]    - Step through replay      ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n" + mainView
	}
	return mainView
}

// RunLive opens the live view for one scenario.
func RunLive(name string, build Build) error {
	m, err := NewModel(name, build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
