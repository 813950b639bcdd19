package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.titleBar.Render("AppliSnap"))
	b.WriteString("\n\n")

	if m.errorBanner != "" {
		b.WriteString(m.styles.errorBanner.Render(m.errorBanner))
		b.WriteString("\n\n")
	}
	if m.successMsg != "" {
		b.WriteString(m.styles.successMsg.Render(m.successMsg))
		b.WriteString("\n\n")
	}
	if m.infoBanner != "" && m.state != stateLoggedIn {
		b.WriteString(m.styles.infoMsg.Render(m.infoBanner))
		b.WriteString("\n\n")
	}

	switch m.state {
	case stateLoggedIn:
		b.WriteString(m.renderForm())
	case stateLoggingIn:
		b.WriteString(m.renderLogin(true))
	case stateLoggingOut:
		b.WriteString(m.styles.infoMsg.Render("Logging out…"))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderLogin(false))
	}

	if tail := m.renderLog(); tail != "" {
		b.WriteString("\n")
		b.WriteString(tail)
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	b.WriteString("\n")

	return m.styles.app.Render(b.String())
}

func (m *model) renderLogin(inFlight bool) string {
	var rows []string
	rows = append(rows, m.loginLabel("Email", m.loginFocus == 0)+" "+m.emailInput.View())
	rows = append(rows, m.loginLabel("Password", m.loginFocus == 1)+" "+m.passwordInput.View())
	if inFlight {
		rows = append(rows, m.spinner.View()+" Signing in…")
	} else {
		rows = append(rows, m.styles.statusHint.Render("Press enter to sign in."))
	}
	return m.styles.loginBox.Render(strings.Join(rows, "\n"))
}

func (m *model) loginLabel(text string, focused bool) string {
	if focused {
		return m.styles.labelFocused.Render(text + ":")
	}
	return m.styles.label.Render(text + ":")
}

func (m *model) renderForm() string {
	var rows []string

	rows = append(rows, m.formRow(fieldCompany, "Company", m.form.company.View()))
	rows = append(rows, m.formRow(fieldRole, "Role", m.form.role.View()))
	rows = append(rows, m.formRow(fieldDomain, "Domain", m.form.domain.View()))
	rows = append(rows, m.formRow(fieldJobURL, "Job URL", m.form.jobURL.View()))
	rows = append(rows, m.formRow(fieldLocation, "Location", m.form.location.View()))
	rows = append(rows, m.formRow(fieldWorkModel, "Work model", m.form.workModel.View()))
	rows = append(rows, m.formRow(fieldDescription, "Description", m.form.description.View()))
	rows = append(rows, m.formRow(fieldNotes, "Notes", m.form.notes.View()))
	rows = append(rows, m.formRow(fieldBoard, "Board", m.renderSelector(&m.form.boardSel)))
	rows = append(rows, m.formRow(fieldList, "List", m.renderSelector(&m.form.listSel)))
	rows = append(rows, m.formRow(fieldStarred, "Starred", m.renderStarred()))
	rows = append(rows, m.styles.label.Render("Date:")+" "+m.form.date)

	if m.submitting {
		rows = append(rows, m.spinner.View()+" Adding job…")
	}

	form := m.styles.formBox.Render(strings.Join(rows, "\n"))
	if !m.showPreview {
		return form
	}

	preview := m.styles.previewTitle.Render("Description preview") + "\n" +
		m.styles.previewBox.Render(renderMarkdown(m.form.description.Value()))
	return lipgloss.JoinVertical(lipgloss.Left, form, preview)
}

func (m *model) formRow(field formField, label, widget string) string {
	style := m.styles.label
	if m.form.focus == field {
		style = m.styles.labelFocused
	}
	return fmt.Sprintf("%s %s", style.Render(padLabel(label)+":"), widget)
}

func (m *model) renderSelector(sel *selector) string {
	if sel.Empty() {
		if sel.pending != "" {
			// A restored selection shown before the options arrive.
			return m.styles.selectorValue.Render("‹ " + sel.pending + " ›")
		}
		return m.styles.selectorEmpty.Render("(none)")
	}
	return m.styles.selectorValue.Render("‹ " + sel.Label() + " ›")
}

func (m *model) renderStarred() string {
	if m.form.starred {
		return "[x]"
	}
	return "[ ]"
}

func (m *model) renderLog() string {
	if len(m.logLines) == 0 {
		return ""
	}
	start := len(m.logLines) - 3
	if start < 0 {
		start = 0
	}
	var rows []string
	for _, line := range m.logLines[start:] {
		rows = append(rows, m.styles.statusHint.Render(line))
	}
	return strings.Join(rows, "\n")
}

func padLabel(label string) string {
	const width = 11
	if len(label) >= width {
		return label
	}
	return label + strings.Repeat(" ", width-len(label))
}
