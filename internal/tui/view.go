package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return m.status + "\n"
	}

	sections := []string{m.renderHeader(), panelStyle.Render(m.renderTunnels())}
	if m.showLog && len(m.logLines) > 0 {
		sections = append(sections, m.renderLog())
	}
	if m.status != "" {
		style := statusBarStyle.Inherit(successStyle)
		if m.statusErr {
			style = statusBarStyle.Inherit(errorStyle)
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, helpStyle.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	found := len(m.URLs())
	title := fmt.Sprintf("tunnelctl  •  port %d  •  %d/%d URLs", m.port, found, len(m.rows))
	if m.debug {
		title += "  •  debug"
	}
	return headerStyle.Render(title)
}

func (m Model) renderTunnels() string {
	if len(m.rows) == 0 {
		return noteStyle.Render("No tunnels configured")
	}

	nameWidth := 0
	for _, r := range m.rows {
		if w := runewidth.StringWidth(r.Name); w > nameWidth {
			nameWidth = w
		}
	}

	lines := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		var icon, body string
		switch r.State {
		case stateFound:
			icon = successStyle.Render(SafeIcon(IconCheck))
			body = urlStyle.Render(r.URL)
		case stateMissing:
			icon = errorStyle.Render(SafeIcon(IconCross))
			body = errorStyle.Render("no URL before timeout")
		default:
			icon = m.spinner.View() + " "
			body = pendingStyle.Render("waiting for URL...")
		}
		line := icon + nameStyle.Render(padRight(r.Name, nameWidth)) + "  " + body
		if r.Note != "" {
			line += " " + noteStyle.Render(r.Note)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLog() string {
	lines := m.logLines
	if len(lines) > visibleLogLines {
		lines = lines[len(lines)-visibleLogLines:]
	}
	width := m.width - panelStyle.GetHorizontalFrameSize()
	title := logPanelTitleStyle.Render(SafeIcon(IconScroll) + "Activity Log")
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, prepareLogContent(lines, width)))
}
