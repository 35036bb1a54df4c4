package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/scenario"
)

var presetInfo = map[string]string{
	"lunar":    "default lunar bed",
	"earth":    "terrestrial gravity",
	"loose":    "weak cohesion, low friction",
	"sticky":   "strong near-field cohesion",
	"small":    "6x6x2 bed",
	"excavate": "height-held plunge and drag",
	"press":    "tool pressed into the bed",
}

const (
	stateMenu = iota
	stateSim
)

type menuModel struct {
	state   int
	cursor  int
	presets []string
	err     error
	live    Model
}

// NewApp returns a preset picker that opens the live view.
func NewApp() tea.Model {
	return menuModel{state: stateMenu, presets: config.ListPresets()}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && m.state == stateMenu {
		return m.menuKey(key)
	}
	if m.state != stateSim {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.state = stateMenu
		return m, nil
	}
	next, cmd := m.live.Update(msg)
	m.live = next.(Model)
	return m, cmd
}

func (m menuModel) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		name := m.presets[m.cursor]
		live, err := NewModel(config.GetPreset(name), name)
		if err != nil {
			m.err = err
			return m, nil
		}
		live.quitOnEsc = false
		m.live, m.state, m.err = live, stateSim, nil
		return m, live.Init()
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	var b strings.Builder
	sub := lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
	b.WriteString("\n\n    " + GradientText("REGOLITH", CurrentTheme.Primary, CurrentTheme.Accent) + "\n")
	b.WriteString("    " + sub.Render("cohesive granular bed") + "\n")
	b.WriteString("    " + sub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.presets {
		grains := 0
		if cfg := config.GetPreset(name); cfg != nil {
			grains = scenario.Count(cfg.Params())
		}
		desc := fmt.Sprintf("%-28s %4d grains", presetInfo[name], grains)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				activeStyle().Render("▸"),
				lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-10s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n",
				sub.Render(fmt.Sprintf("%-10s", name)),
				sub.Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + statusStyle(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter start  esc back  q quit") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen()).Run()
	return err
}

// RunLive opens the live view for one config.
func RunLive(cfg *config.Config, name string) error {
	m, err := NewModel(cfg, name)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
