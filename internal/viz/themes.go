package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colour scheme for terminal output.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	// Genotype bar colours, in AA, Aa, aa order.
	Genotypes [3]lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:      "classic",
		Primary:   lipgloss.Color("86"),
		Accent:    lipgloss.Color("205"),
		Muted:     lipgloss.Color("240"),
		Text:      lipgloss.Color("252"),
		Genotypes: [3]lipgloss.Color{"#e04f5f", "#5fd787", "#5f87ff"},
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Muted:     lipgloss.Color("#4488aa"),
		Text:      lipgloss.Color("#e0f0ff"),
		Genotypes: [3]lipgloss.Color{"#0077be", "#00a8cc", "#7fdbff"},
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Accent:    lipgloss.Color("#cccccc"),
		Muted:     lipgloss.Color("#888888"),
		Text:      lipgloss.Color("#ffffff"),
		Genotypes: [3]lipgloss.Color{"#ffffff", "#aaaaaa", "#666666"},
	}

	CurrentTheme = ThemeClassic

	Themes = []Theme{
		ThemeClassic,
		ThemeOcean,
		ThemeMono,
	}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}
