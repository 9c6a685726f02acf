package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	footerStyle    = lipgloss.NewStyle().Faint(true)
)

func (m *model) View() string {
	if !m.ready {
		return "Loading…"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ScholarChat"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View())
		b.WriteString(" thinking…\n")
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("enter: send · esc: quit"))
	return b.String()
}

func (m *model) renderTranscript() string {
	width := m.viewport.Width
	if width < minViewportWidth {
		width = minViewportWidth
	}

	var b strings.Builder
	for i, msg := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.role {
		case roleUser:
			b.WriteString(userStyle.Render("You: "))
			b.WriteString(wordwrap.String(msg.text, width-5))
		case roleError:
			b.WriteString(errorStyle.Render(wordwrap.String(msg.text, width)))
		default:
			b.WriteString(assistantStyle.Render(wordwrap.String(msg.text, width)))
		}
	}
	return b.String()
}
