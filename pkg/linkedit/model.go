package linkedit

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Colors follow the semtk CLI palette in internal/cli/ui.go.
var (
	colorCyan = lipgloss.Color("36")
	colorRed  = lipgloss.Color("167")
	colorGray = lipgloss.Color("245")
	colorDim  = lipgloss.Color("240")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	normalStyle   = lipgloss.NewStyle().Foreground(colorGray)
	deleteStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	helpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	frameStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// Model is a bubbletea model around an Editor. After the program exits,
// Result holds the confirmed edit, or nil if the user cancelled.
type Model struct {
	Editor *Editor
	Result *Edit
}

// NewModel presents ed and wraps it.
func NewModel(ed *Editor) Model {
	ed.Present()
	return Model{Editor: ed}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "esc", "q", "ctrl+c":
		m.Editor.Cancel()
		return m, tea.Quit
	case "up", "k", "shift+tab":
		m.Editor.SelectPrev()
	case "down", "j", "tab":
		m.Editor.SelectNext()
	case " ", "x":
		m.Editor.ToggleDelete()
	case "r":
		m.Editor.Reset()
	case "enter":
		if edit, ok := m.Editor.Confirm(); ok {
			m.Result = &edit
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	v := m.Editor.View()
	var b strings.Builder

	b.WriteString(titleStyle.Render(v.Title))
	b.WriteString("\n\n")
	b.WriteString("Optional:\n")
	for _, c := range v.Choices {
		if c.Mode == v.Selected {
			b.WriteString(selectedStyle.Render("▸ " + c.Label))
		} else {
			b.WriteString(normalStyle.Render("  " + c.Label))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if v.Delete {
		b.WriteString(deleteStyle.Render("[x] Delete"))
	} else {
		b.WriteString(normalStyle.Render("[ ] Delete"))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓ mode  space delete  r reset  ⏎ ok  esc cancel"))

	return frameStyle.Width(v.Width).Render(b.String())
}
