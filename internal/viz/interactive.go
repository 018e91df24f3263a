package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/softsim/internal/config"
	"github.com/san-kum/softsim/internal/mesh"
)

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// entry is one row of the launcher: a preset, or a bare shape with the
// default configuration.
type entry struct {
	shape, preset string
}

func (e entry) label() string {
	if e.preset == "" {
		return e.shape
	}
	return e.shape + "/" + e.preset
}

func (e entry) config() *config.Config {
	if e.preset != "" {
		return config.GetPreset(e.shape, e.preset)
	}
	cfg := config.DefaultConfig()
	cfg.Shape = e.shape
	return cfg
}

// editable fields of the config screen, in display order.
var fieldNames = []string{"spring_ks", "spring_kd", "contact_ks", "contact_kd", "particle_mass", "size", "lift", "dt"}

func getField(c *config.Config, name string) float64 {
	switch name {
	case "size":
		return c.Size
	case "lift":
		return c.Transform.Translation[1]
	case "dt":
		return c.Dt
	}
	v, _ := c.Get(name)
	return v
}

func setField(c *config.Config, name string, v float64) error {
	switch name {
	case "size":
		c.Size = v
	case "lift":
		c.Transform.Translation[1] = v
	case "dt":
		c.Dt = v
	default:
		return c.Set(name, v)
	}
	return nil
}

type launcher struct {
	state, cursor int
	entries       []entry
	cfg           *config.Config
	fieldCursor   int
	editing       bool
	editBuf       string
	err           error
	liveModel     Model
}

func NewLauncher() *launcher {
	entries := make([]entry, 0)
	for _, shape := range config.PresetShapes() {
		for _, name := range config.ListPresets(shape) {
			entries = append(entries, entry{shape: shape, preset: name})
		}
	}
	for _, shape := range mesh.ShapeNames() {
		entries = append(entries, entry{shape: shape})
	}
	return &launcher{state: stateMenu, entries: entries}
}

func (m launcher) Init() tea.Cmd { return nil }

func (m launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case stateMenu:
			return m.menuKey(msg)
		case stateConfig:
			return m.configKey(msg)
		}
	}
	return m, nil
}

func (m launcher) menuKey(msg tea.KeyMsg) (launcher, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.cfg = m.entries[m.cursor].config()
		m.state, m.fieldCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m launcher) configKey(msg tea.KeyMsg) (launcher, tea.Cmd) {
	name := fieldNames[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(m.editBuf, 64); err != nil {
				m.err = fmt.Errorf("%s: %w", name, err)
			} else {
				m.apply(name, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(fieldNames)-1 {
			m.fieldCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(getField(m.cfg, name), 'g', -1, 64)
	case "left", "h":
		m.apply(name, getField(m.cfg, name)*0.9)
	case "right", "l":
		m.apply(name, getField(m.cfg, name)*1.1)
	case "s":
		live, err := NewModel(m.cfg)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.liveModel, m.state = live, stateSim
		return m, live.Init()
	}
	return m, nil
}

// apply writes a field and records any error for the config screen.
func (m *launcher) apply(name string, v float64) {
	if err := setField(m.cfg, name, v); err != nil {
		m.err = err
		return
	}
	m.err = m.cfg.Validate()
}

func (m launcher) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func header(title, subtitle string) string {
	h := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	return "\n\n    " + h.Render(title) + "\n    " + Subtle.Render(subtitle) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n"
}

func keys(pairs ...string) string {
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(keyStyle.Render(pairs[i]) + idleStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m launcher) viewMenu() string {
	var b strings.Builder
	b.WriteString(header("SOFTSIM", "soft-body mass-spring lab"))
	for i, e := range m.entries {
		desc := "defaults"
		if e.preset != "" {
			desc = "preset"
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-26s", e.label())), accentStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-26s", e.label())), Subtle.Render(desc)))
		}
	}
	b.WriteString(keys("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m launcher) viewConfig() string {
	var b strings.Builder
	b.WriteString(header(strings.ToUpper(m.entries[m.cursor].label()), fmt.Sprintf("%s, %s integrator", m.cfg.Name(), m.cfg.Integrator)))
	for i, name := range fieldNames {
		valStr := fmt.Sprintf("%10.4g", getField(m.cfg, name))
		if m.editing && i == m.fieldCursor {
			valStr = fmt.Sprintf("%10s", m.editBuf+"_")
		}
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectedStyle.Render(fmt.Sprintf("%-14s", name)), accentStyle.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", idleStyle.Render(fmt.Sprintf("  %-14s", name)), Subtle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusRecording.UnsetBlink().Render(m.err.Error()) + "\n")
	}
	b.WriteString(keys("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "start", "esc", "back"))
	return b.String()
}

// RunLauncher opens the preset picker, which hands over to the live view.
func RunLauncher() error {
	_, err := tea.NewProgram(NewLauncher(), tea.WithAltScreen()).Run()
	return err
}
