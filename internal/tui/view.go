package tui

import (
	"strings"

	"daygrid/internal/drag"

	"github.com/charmbracelet/lipgloss"
)

var (
	colStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(24)

	colHoverStyle = colStyle.
			BorderForeground(lipgloss.Color("212"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	cardCursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	cardLiftedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	doneGlyph = "✓ "
)

func (m boardModel) View() string {
	src, dragging := m.eng.Session().Dragging()
	hover := m.eng.Session().Hover()

	rendered := make([]string, 0, len(m.cols))
	for ci, c := range m.cols {
		var b strings.Builder
		b.WriteString(titleStyle.Render(c.title))
		b.WriteString("\n")
		if len(c.tasks) == 0 {
			b.WriteString(cardStyle.Render("—"))
		}
		for ri, t := range c.tasks {
			line := t.Text
			if t.Completed {
				line = doneGlyph + line
			}
			style := cardStyle
			switch {
			case dragging && t.ID == src.TaskID:
				style = cardLiftedStyle
			case ci == m.col && ri == m.row:
				style = cardCursorStyle
			}
			b.WriteString(style.Render(line))
			if ri < len(c.tasks)-1 {
				b.WriteString("\n")
			}
		}

		frame := colStyle
		if dragging && columnHovered(c, hover) {
			frame = colHoverStyle
		}
		rendered = append(rendered, frame.Render(b.String()))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	if m.capturing {
		out += "\n" + m.entry.input.View()
	} else {
		out += "\n" + statusStyle.Render(m.statusLine())
	}
	return out
}

func (m boardModel) statusLine() string {
	if m.status != "" {
		return m.status
	}
	if m.lifted {
		return "move with arrows, enter drops, esc cancels"
	}
	return m.date + " · space lifts a task · g graveyard · q quits"
}

func columnHovered(c column, hover drag.Target) bool {
	if hover.Graveyard {
		return c.id.Graveyard
	}
	return hover.Container != nil && hover.Container.Equal(c.id)
}
