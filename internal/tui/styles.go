package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/bmilog/internal/model"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	text    lipgloss.Style
	muted   lipgloss.Style
	focused lipgloss.Style
	error   lipgloss.Style
	status  lipgloss.Style
	box     lipgloss.Style
}

func stylesFor(theme model.Theme) styles {
	text, muted, accent, border := lipgloss.Color("#1F1F1F"), lipgloss.Color("#6E6E6E"), lipgloss.Color("#4B0082"), lipgloss.Color("#B0B0B0")
	if theme == model.ThemeDark {
		text, muted, accent, border = lipgloss.Color("#F0F0F0"), lipgloss.Color("#8C8C8C"), lipgloss.Color("#C89A3A"), lipgloss.Color("#4A4A4A")
	}
	return styles{
		title:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		label:   lipgloss.NewStyle().Foreground(muted),
		text:    lipgloss.NewStyle().Foreground(text),
		muted:   lipgloss.NewStyle().Foreground(muted),
		focused: lipgloss.NewStyle().Foreground(accent),
		error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2E8B57")),
		box: lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(border),
	}
}

func categoryStyle(color model.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color.Hex())).Bold(true)
}
