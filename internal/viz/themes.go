package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a colour scheme for the live view.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var (
	ThemeRegolith = Theme{
		Name:       "regolith",
		Primary:    lipgloss.Color("#c8c2b4"), // dust grey
		Secondary:  lipgloss.Color("#8d8779"),
		Accent:     lipgloss.Color("#ffb347"),
		Background: lipgloss.Color("#141414"),
		Text:       lipgloss.Color("#eeeeee"),
		Muted:      lipgloss.Color("#6b6b6b"),
		Success:    lipgloss.Color("#7fd17f"),
		Warning:    lipgloss.Color("#ffcc66"),
		Error:      lipgloss.Color("#ff5f56"),
	}

	ThemeMare = Theme{
		Name:       "mare",
		Primary:    lipgloss.Color("#7aa2c8"),
		Secondary:  lipgloss.Color("#4f6f8f"),
		Accent:     lipgloss.Color("#f0e68c"),
		Background: lipgloss.Color("#0b1420"),
		Text:       lipgloss.Color("#dde8f2"),
		Muted:      lipgloss.Color("#53677a"),
		Success:    lipgloss.Color("#66d9a0"),
		Warning:    lipgloss.Color("#f5c26b"),
		Error:      lipgloss.Color("#ef6461"),
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#33ff33"), // Phosphor green
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#66ff66"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#33ff33"),
		Muted:      lipgloss.Color("#116611"),
		Success:    lipgloss.Color("#00ff00"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff3333"),
	}

	ThemeMinimal = Theme{
		Name:       "minimal",
		Primary:    lipgloss.Color("#ffffff"),
		Secondary:  lipgloss.Color("#aaaaaa"),
		Accent:     lipgloss.Color("#ffffff"),
		Background: lipgloss.Color("#000000"),
		Text:       lipgloss.Color("#cccccc"),
		Muted:      lipgloss.Color("#666666"),
		Success:    lipgloss.Color("#ffffff"),
		Warning:    lipgloss.Color("#aaaaaa"),
		Error:      lipgloss.Color("#ffffff"),
	}

	CurrentTheme = ThemeRegolith

	Themes = []Theme{
		ThemeRegolith,
		ThemeMare,
		ThemeRetroGreen,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeRegolith
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
	CurrentTheme = ThemeRegolith
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
