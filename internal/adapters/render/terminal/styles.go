package terminal

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	success lipgloss.Style
	prompt  lipgloss.Style
	busy    lipgloss.Style
	hint    lipgloss.Style
	panel   lipgloss.Style
	failure lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	border  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		info:    r.NewStyle().Foreground(lipgloss.Color("252")),
		warning: r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		prompt:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		busy:    r.NewStyle().Foreground(lipgloss.Color("69")),
		hint:    r.NewStyle().Faint(true),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		failure: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(0, 1),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("250")).Padding(0, 1),
		cell:   r.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1),
		border: r.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
