package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the stats panel: one color per team plus the ball.
type Theme struct {
	Name   string
	Blue   lipgloss.Color
	Yellow lipgloss.Color
	Ball   lipgloss.Color
	Field  lipgloss.Color
	Text   lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeField = Theme{
		Name:   "field",
		Blue:   lipgloss.Color("#3399ff"),
		Yellow: lipgloss.Color("#ffdd00"),
		Ball:   lipgloss.Color("#ff8800"),
		Field:  lipgloss.Color("#00cc66"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#668866"),
	}

	ThemeNight = Theme{
		Name:   "night",
		Blue:   lipgloss.Color("#66aaff"),
		Yellow: lipgloss.Color("#ffee88"),
		Ball:   lipgloss.Color("#ff6644"),
		Field:  lipgloss.Color("#446688"),
		Text:   lipgloss.Color("#e0f0ff"),
		Muted:  lipgloss.Color("#4488aa"),
	}

	ThemeMono = Theme{
		Name:   "mono",
		Blue:   lipgloss.Color("#ffffff"),
		Yellow: lipgloss.Color("#cccccc"),
		Ball:   lipgloss.Color("#ffffff"),
		Field:  lipgloss.Color("#888888"),
		Text:   lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
	}

	CurrentTheme = ThemeField

	Themes = []Theme{
		ThemeField,
		ThemeNight,
		ThemeMono,
	}
)

// GetTheme returns a theme by name, or the field theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeField
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemeField
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
