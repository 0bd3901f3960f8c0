package app

import (
	"strings"

	"tunnelctl/internal/tunnel"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	tableTitleStyle = lipgloss.NewStyle().Bold(true)
	tableNameStyle  = lipgloss.NewStyle().Bold(true)
	tableURLStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0000CC", Dark: "#58A6FF"})
	tableNoteStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#606060", Dark: "#909090"})
	tableEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"})
)

// renderURLTable formats the discovered URLs with names aligned by display width.
func renderURLTable(urls []tunnel.DiscoveredURL) string {
	if len(urls) == 0 {
		return tableEmptyStyle.Render("No tunnel URLs were discovered") + "\n"
	}

	nameWidth := 0
	for _, u := range urls {
		if w := runewidth.StringWidth(u.Name); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	b.WriteString(tableTitleStyle.Render("Tunnel URLs"))
	b.WriteString("\n")
	for _, u := range urls {
		b.WriteString("  ")
		b.WriteString(tableNameStyle.Render(runewidth.FillRight(u.Name, nameWidth)))
		b.WriteString("  ")
		b.WriteString(tableURLStyle.Render(u.URL))
		if u.Note != "" {
			b.WriteString(" ")
			b.WriteString(tableNoteStyle.Render(u.Note))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// urlText is what gets copied to the clipboard: one URL per line.
func urlText(urls []tunnel.DiscoveredURL) string {
	lines := make([]string, 0, len(urls))
	for _, u := range urls {
		lines = append(lines, u.URL)
	}
	return strings.Join(lines, "\n")
}
