package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app, titleBar            lipgloss.Style
	formBox, loginBox        lipgloss.Style
	label, labelFocused      lipgloss.Style
	selectorValue            lipgloss.Style
	selectorEmpty            lipgloss.Style
	errorBanner, successMsg  lipgloss.Style
	infoMsg, statusHint      lipgloss.Style
	previewBox, previewTitle lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	box := lipgloss.NormalBorder()

	return styles{
		app:           base,
		titleBar:      base.Copy().Bold(true).Padding(0, 1),
		formBox:       base.BorderStyle(box).Padding(0, 1),
		loginBox:      base.BorderStyle(box).Padding(1, 2),
		label:         base.Copy().Faint(true),
		labelFocused:  base.Copy().Bold(true),
		selectorValue: base.Copy().Padding(0, 1),
		selectorEmpty: base.Copy().Faint(true).Padding(0, 1),
		errorBanner:   base.Copy().Bold(true).Foreground(lipgloss.Color("1")),
		successMsg:    base.Copy().Bold(true).Foreground(lipgloss.Color("2")),
		infoMsg:       base.Copy().Faint(true),
		statusHint:    base.Copy().Faint(true),
		previewBox:    base.Border(lipgloss.RoundedBorder()).Padding(0, 1),
		previewTitle:  base.Copy().Bold(true).Padding(0, 1),
	}
}
