package chat

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title     lipgloss.Style
	prompt    lipgloss.Style
	assistant lipgloss.Style
	notice    lipgloss.Style
	dim       lipgloss.Style
	err       lipgloss.Style
}

// newStyles binds the palette to out so colors are dropped when out is not a terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1),
		prompt: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		assistant: r.NewStyle().
			Foreground(lipgloss.Color("252")),
		notice: r.NewStyle().
			Foreground(lipgloss.Color("214")),
		dim: r.NewStyle().
			Foreground(lipgloss.Color("242")),
		err: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")),
	}
}
