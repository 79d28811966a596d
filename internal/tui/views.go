package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spacesub/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// View renders the review screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.theme.Title.Render("Subscription suggestions"),
		m.renderList(),
	}

	if s, ok := m.Selected(); ok && !m.loading {
		sections = append(sections, m.renderDetail(s))
	}

	sections = append(sections, m.renderStatus(), m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderList() string {
	if m.loading && len(m.suggestions) == 0 {
		return m.spinner.View() + " Analyzing transactions..."
	}
	if len(m.suggestions) == 0 {
		return m.theme.Muted.Render("No suggestions. Import more history or press r to re-analyze.")
	}

	var b strings.Builder
	for i, s := range m.suggestions {
		line := fmt.Sprintf("%-28s %12s %-9s %s",
			truncate(s.Name, 28),
			s.Amount.StringFixed(2)+" "+s.Currency,
			string(s.BillingCycle),
			m.theme.Score.Render(fmt.Sprintf("%.2f", s.Score)))

		if i == m.cursor {
			b.WriteString(m.theme.Selected.Render("> " + line))
		} else {
			b.WriteString(m.theme.Normal.Render("  " + line))
		}
		if i < len(m.suggestions)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderDetail(s model.Suggestion) string {
	next := "-"
	if !s.NextBilling.IsZero() {
		next = s.NextBilling.Format("2006-01-02")
	}

	content := fmt.Sprintf("%s\nNext billing: %s\nBased on %d transactions\nID: %s",
		m.theme.Bold.Render(s.Name), next, s.TransactionCount, m.theme.Muted.Render(s.SuggestionID))
	return m.theme.BorderedBox.Render(content)
}

func (m Model) renderStatus() string {
	var parts []string
	if m.loading && len(m.suggestions) > 0 {
		parts = append(parts, m.spinner.View())
	}
	if m.status != "" {
		style := m.theme.StatusSuccess
		if m.statusError {
			style = m.theme.StatusError
		}
		parts = append(parts, style.Render(m.status))
	}
	parts = append(parts, m.theme.Subtitle.Render(fmt.Sprintf("confirmed %d · dismissed %d", m.confirmed, m.dismissed)))
	return strings.Join(parts, "  ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
