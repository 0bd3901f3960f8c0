package tui

import (
	"fmt"
	"strings"

	"tunnelctl/pkg/logging"

	"github.com/mattn/go-runewidth"
)

// formatLogEntry renders an entry the way it is stored in the activity log.
func formatLogEntry(e logging.LogEntry) string {
	line := fmt.Sprintf("%s [%s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Message)
	if e.Subsystem != "" {
		line = fmt.Sprintf("%s [%s] %s: %s", e.Timestamp.Format("15:04:05"), e.Level, e.Subsystem, e.Message)
	}
	if e.Err != nil {
		line += ": " + e.Err.Error()
	}
	return line
}

// prepareLogContent truncates long lines to avoid wrapping and applies
// color styles based on the level marker.
func prepareLogContent(lines []string, maxWidth int) string {
	out := make([]string, len(lines))
	for i, raw := range lines {
		line := raw
		if maxWidth > 1 && runewidth.StringWidth(line) > maxWidth {
			line = runewidth.Truncate(line, maxWidth-1, "") + "…"
		}
		out[i] = styleLogLine(line)
	}
	return strings.Join(out, "\n")
}

// styleLogLine returns the line wrapped in the lipgloss style for its level.
func styleLogLine(l string) string {
	switch {
	case strings.Contains(l, "[ERROR]"):
		return logErrorStyle.Render(l)
	case strings.Contains(l, "[WARN]"):
		return logWarnStyle.Render(l)
	case strings.Contains(l, "[DEBUG]"):
		return logDebugStyle.Render(l)
	default:
		return logInfoStyle.Render(l)
	}
}
