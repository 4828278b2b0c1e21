package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const logoText = "CoreGymClub"

// renderNavbar draws the top bar: logo, page title and the member.
func (m Model) renderNavbar() string {
	styles := m.theme.Styles()

	left := styles.Logo.Render(logoText) + "  " + styles.Text.Bold(true).Render(m.screen.Title())

	member := "Not signed in"
	if m.email != "" {
		member = m.email
		if m.width < LayoutCompactWidth {
			member = maskEmail(member)
		}
	}
	right := styles.MutedText.Render(member)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + padRight("", gap) + right
	return styles.Navbar.Width(m.width).MaxWidth(m.width).Render(line)
}

// renderToast draws the transient message line, blank when idle.
func (m Model) renderToast() string {
	styles := m.theme.Styles()
	if m.toast.text == "" {
		return ""
	}
	style := styles.InfoText
	switch m.toast.kind {
	case toastSuccess:
		style = styles.SuccessText
	case toastError:
		style = styles.DangerText
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(style.Render(m.toast.text))
}

// renderFooter shows the key hints for the current screen.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	keys := m.keys.ForScreen(m.screen, m.email != "")
	return styles.Footer.Width(m.width).MaxWidth(m.width).Render(m.help.View(keys))
}
