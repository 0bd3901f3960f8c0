package tui

import (
	"tunnelctl/internal/tunnel"
	"tunnelctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// URLDiscoveredMsg reports the first URL found in one tunnel's output.
type URLDiscoveredMsg struct {
	Name string
	URL  string
	Note string
}

// URLsPublishedMsg reports the end of URL discovery, either because every
// tunnel produced a URL or because the discovery timeout passed.
type URLsPublishedMsg struct {
	URLs []tunnel.DiscoveredURL
}

// NewLogEntryMsg carries one log entry from the logging channel.
type NewLogEntryMsg struct {
	Entry logging.LogEntry
}

// clearStatusMsg expires the status message with the matching sequence number.
type clearStatusMsg struct {
	seq int
}

// listenForUpdates waits for the next tunnel event.
func listenForUpdates(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// listenForLogEntries waits for the next log entry.
func listenForLogEntries(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return NewLogEntryMsg{Entry: entry}
	}
}
