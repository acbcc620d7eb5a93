package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/scenario"
)

const (
	stateMenu = iota
	stateSim
)

var (
	menuTitle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuActive = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// menu picks a scenario and hands over to the live view.
type menu struct {
	state, cursor int
	reg           *scenario.Registry
	cfg           *config.Config
	names         []string
	live          Model
	err           error
}

func NewMenu(reg *scenario.Registry, cfg *config.Config) *menu {
	return &menu{
		state: stateMenu,
		reg:   reg,
		cfg:   cfg,
		names: reg.List(),
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.state = stateMenu
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (menu, tea.Cmd) {
	if len(m.names) == 0 {
		return m, nil
	}
	name := m.names[m.cursor]
	live, err := NewModel(name, TrialBuild(m.reg, scenario.Config{Scenario: name, Robot: m.cfg}))
	if err != nil {
		m.err = err
		return m, nil
	}
	m.live, m.state, m.err = live, stateSim, nil
	return m, m.live.Init()
}

// TrialBuild adapts a scenario config into a live view Build.
func TrialBuild(reg *scenario.Registry, cfg scenario.Config) Build {
	return func() (*scenario.Trial, error) {
		return scenario.New(reg, cfg, nil)
	}
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("ROBOSIM") + "\n    " + menuSub.Render("omni-wheel robot scenarios") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.names {
		desc := ""
		if sc, err := m.reg.Get(name); err == nil {
			desc = sc.Description
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuActive.Render(fmt.Sprintf("%-10s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuIdle.Render(fmt.Sprintf("  %-10s", name)), menuIdle.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusPaused.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + menuKey.Render("j/k") + menuSub.Render(" navigate  ") + menuKey.Render("enter") + menuSub.Render(" run  ") + menuKey.Render("esc") + menuSub.Render(" back  ") + menuKey.Render("q") + menuSub.Render(" quit") + "\n")
	return b.String()
}

func RunInteractive(reg *scenario.Registry, cfg *config.Config) error {
	_, err := tea.NewProgram(NewMenu(reg, cfg), tea.WithAltScreen()).Run()
	return err
}
