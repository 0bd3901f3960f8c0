package tui

import (
	"tunnelctl/internal/tunnel"
	"tunnelctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Bridge turns tunnel callbacks into dashboard messages.
type Bridge struct {
	ch chan tea.Msg
}

// NewBridge returns a Bridge for a session of n tunnels. Each tunnel reports
// at most one URL and the session publishes once, so sends never block.
func NewBridge(n int) *Bridge {
	return &Bridge{ch: make(chan tea.Msg, n+1)}
}

// Updates is the channel to pass as Config.Updates.
func (b *Bridge) Updates() <-chan tea.Msg {
	return b.ch
}

// URLCallback returns the per-tunnel callback for the tunnel called name.
func (b *Bridge) URLCallback(name string) tunnel.URLCallback {
	return func(url, note string) {
		b.ch <- URLDiscoveredMsg{Name: name, URL: url, Note: note}
	}
}

// Published is the session callback that reports the final URL list.
func (b *Bridge) Published(urls []tunnel.DiscoveredURL) {
	b.ch <- URLsPublishedMsg{URLs: urls}
}

// NewProgram creates the Bubble Tea program for the dashboard.
func NewProgram(cfg Config, logChannel <-chan logging.LogEntry, opts ...tea.ProgramOption) *tea.Program {
	m := NewModel(cfg, logChannel)
	return tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
}
