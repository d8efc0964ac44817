package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/lensline/internal/analysis"
	"github.com/Veraticus/lensline/internal/cli"
	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.theme.Faint.Render("Loading history...")
	}

	if m.detail != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			"",
			m.theme.BorderedBox.Render(cli.FormatRecord(*m.detail)),
			m.help.View(m.keymap),
		)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.theme.BorderedBox.Render(m.stats.View()),
		m.theme.BorderedBox.Render(m.activity.View()),
		m.renderAchievements(),
		m.renderStatusBar(),
	)
	return body
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("🔍 LensLine")
	if m.user == nil {
		return title
	}
	who := fmt.Sprintf("%s · %s plan · %d scans today", m.user.Name, m.user.Plan, m.user.ScansToday)
	return title + "  " + m.theme.Faint.Render(who)
}

func (m Model) renderAchievements() string {
	var parts []string
	for _, a := range analysis.Achievements(m.records, m.stats.Stats()) {
		if a.Unlocked {
			parts = append(parts, m.theme.StatusSuccess.Render("🏆 "+a.Name))
		} else {
			parts = append(parts, m.theme.Faint.Render("· "+a.Name))
		}
	}
	return " " + strings.Join(parts, "   ")
}

func (m Model) renderStatusBar() string {
	var status string
	switch m.sync {
	case syncing:
		status = m.theme.StatusInfo.Render("Syncing...")
	case syncRemote:
		status = m.theme.StatusSuccess.Render("Synced with server")
	case syncFailed:
		status = m.theme.StatusWarning.Render("Server unavailable, showing local history")
	default:
		status = m.theme.Faint.Render("Local history")
	}

	if hasSynthetic(m) {
		status += m.theme.Faint.Render("   * placeholder result")
	}
	return status + "\n" + m.help.View(m.keymap)
}

func hasSynthetic(m Model) bool {
	for _, r := range m.records {
		if r.Synthetic {
			return true
		}
	}
	return false
}
