package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/7eVeNcO/semtk/pkg/linkedit"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickModel - Interactive row selection
// =============================================================================

// PickModel is the bubbletea model for choosing one row of a table.
// Selected is -1 until a row is chosen.
type PickModel struct {
	Title    string
	Headers  []string
	Rows     [][]string
	Cursor   int
	Selected int
	Height   int
	Offset   int
}

// NewPickModel creates a new pick model.
func NewPickModel(title string, headers []string, rows [][]string) PickModel {
	return PickModel{
		Title:    title,
		Headers:  headers,
		Rows:     rows,
		Selected: -1,
		Height:   15,
	}
}

func (m PickModel) Init() tea.Cmd {
	return nil
}

func (m PickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) == 0 {
				return m, nil
			}
			m.Selected = m.Cursor
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m PickModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, m.Rows[i]...))
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(append([]string{""}, m.Headers...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

// pick runs a PickModel on stderr and returns the chosen row index.
// It reports false if the user quit without choosing.
func pick(title string, headers []string, rows [][]string) (int, bool, error) {
	final, err := tea.NewProgram(NewPickModel(title, headers, rows), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return 0, false, fmt.Errorf("run picker: %w", err)
	}
	m := final.(PickModel)
	return m.Selected, m.Selected >= 0, nil
}

// editLink runs the link editor on stderr and returns the confirmed edit,
// or nil if the user cancelled.
func editLink(ed *linkedit.Editor) (*linkedit.Edit, error) {
	final, err := tea.NewProgram(linkedit.NewModel(ed), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("run link editor: %w", err)
	}
	return final.(linkedit.Model).Result, nil
}
