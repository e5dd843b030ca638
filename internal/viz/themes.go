package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/cruisectl/internal/acc"
)

// Theme colours the replay: the road strip, headings and one colour per zone.
type Theme struct {
	Name     string
	Road     lipgloss.Color
	Title    lipgloss.Color
	Idle     lipgloss.Color
	Clear    lipgloss.Color
	Caution  lipgloss.Color
	Critical lipgloss.Color
}

// Themes is cycled with the t key. The first one is the default.
var Themes = []Theme{
	{
		Name:     "dashboard",
		Road:     lipgloss.Color("#9aa5b1"),
		Title:    lipgloss.Color("#4fc3f7"),
		Idle:     lipgloss.Color("#607080"),
		Clear:    lipgloss.Color("#66bb6a"),
		Caution:  lipgloss.Color("#ffb300"),
		Critical: lipgloss.Color("#ef5350"),
	},
	{
		Name:     "night",
		Road:     lipgloss.Color("#3d5a80"),
		Title:    lipgloss.Color("#98c1d9"),
		Idle:     lipgloss.Color("#293241"),
		Clear:    lipgloss.Color("#2a9d8f"),
		Caution:  lipgloss.Color("#e9c46a"),
		Critical: lipgloss.Color("#e76f51"),
	},
	{
		Name:     "mono",
		Road:     lipgloss.Color("#ffffff"),
		Title:    lipgloss.Color("#ffffff"),
		Idle:     lipgloss.Color("#777777"),
		Clear:    lipgloss.Color("#bbbbbb"),
		Caution:  lipgloss.Color("#dddddd"),
		Critical: lipgloss.Color("#ffffff"),
	},
}

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// ZoneStyle colours a zone label.
func (t Theme) ZoneStyle(z acc.Zone) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch z {
	case acc.ZoneClear:
		return s.Foreground(t.Clear)
	case acc.ZoneCaution:
		return s.Foreground(t.Caution)
	case acc.ZoneCritical:
		return s.Foreground(t.Critical).Blink(true)
	default:
		return s.Foreground(t.Idle)
	}
}
