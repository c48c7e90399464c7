// Package tui is a small interactive browser over an analysis.Result:
// the primary interpretation's Roman-numeral strip, its confidence
// breakdown, and the alternatives list, navigable with the arrow keys.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"harmonic-analysis/analysis"
)

var (
	primaryColor   = lipgloss.Color("#00FFFF")
	secondaryColor = lipgloss.Color("#FFFF00")
	accentColor    = lipgloss.Color("#00FF00")
	dimColor       = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	romanStyle = lipgloss.NewStyle().
			Width(8).
			Align(lipgloss.Center)

	selectedRomanStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				Width(8).
				Align(lipgloss.Center)

	breakdownStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	dimStyle       = lipgloss.NewStyle().Foreground(dimColor)
	confirmStyle   = lipgloss.NewStyle().Foreground(accentColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("#444444"))
)

// Model is the Bubbletea model over a completed analysis.Result.
type Model struct {
	result   *analysis.Result
	selected int // -1 = primary; 0..len(alternatives)-1 = alternatives[selected]
	cursor   int // which Roman token is highlighted
	quitting bool
}

// New constructs a browser Model over a completed Result.
func New(result *analysis.Result) *Model {
	return &Model{result: result, selected: -1}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) current() *analysis.Interpretation {
	if m.selected < 0 {
		return m.result.Primary
	}
	if m.selected < len(m.result.Alternatives) {
		return &m.result.Alternatives[m.selected]
	}
	return m.result.Primary
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "left":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right":
			interp := m.current()
			if interp != nil && m.cursor < len(interp.Romans)-1 {
				m.cursor++
			}
		case "up":
			if m.selected > -1 {
				m.selected--
				m.cursor = 0
			}
		case "down":
			if m.selected < len(m.result.Alternatives)-1 {
				m.selected++
				m.cursor = 0
			}
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.result == nil || m.result.Primary == nil {
		return titleStyle.Render("no interpretation") + "\n"
	}

	interp := m.current()

	var b strings.Builder
	label := "primary"
	if m.selected >= 0 {
		label = fmt.Sprintf("alternative %d", m.selected+1)
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("harmonic analysis: %s", label)))
	b.WriteString("\n\n")

	var romans []string
	for i, tok := range interp.Romans {
		style := romanStyle
		if i == m.cursor {
			style = selectedRomanStyle
		}
		romans = append(romans, style.Render(tok.Render()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, romans...))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("track") + "  " + string(interp.Type) + "\n")
	b.WriteString(breakdownStyle.Render(fmt.Sprintf(
		"functional %.2f  modal %.2f  chromatic %.2f",
		interp.RawConfidence.Functional, interp.RawConfidence.Modal, interp.RawConfidence.Chromatic,
	)) + "\n")
	b.WriteString(confirmStyle.Render(fmt.Sprintf("calibrated confidence: %.2f", interp.CalibratedConfidence)))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(interp.Reasoning))
	b.WriteString("\n\n")

	b.WriteString(borderStyle.Render(dimStyle.Render(
		fmt.Sprintf("%d alternative(s): up/down to switch, left/right to move the cursor, q to quit", len(m.result.Alternatives)),
	)))
	b.WriteString("\n")

	return b.String()
}

// Run starts the interactive browser.
func Run(result *analysis.Result) error {
	p := tea.NewProgram(New(result))
	_, err := p.Run()
	return err
}
