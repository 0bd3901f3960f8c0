package tui

import (
	"tunnelctl/internal/tunnel"
	"tunnelctl/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type tunnelState int

const (
	stateWaiting tunnelState = iota
	stateFound
	stateMissing
)

type tunnelRow struct {
	Name  string
	Note  string
	URL   string
	State tunnelState
}

// Config configures the dashboard model.
type Config struct {
	Port    int
	Specs   []tunnel.Spec
	Debug   bool
	Updates <-chan tea.Msg
	// Copy writes text to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
}

// Model is the bubbletea model of the tunnel dashboard.
type Model struct {
	port  int
	debug bool
	rows  []tunnelRow
	index map[string]int

	spinner spinner.Model
	keys    KeyMap
	help    help.Model

	logLines   []string
	showLog    bool
	logChannel <-chan logging.LogEntry
	updates    <-chan tea.Msg

	status    string
	statusErr bool
	statusSeq int

	published bool
	quitting  bool
	width     int

	copyFn func(string) error
}

// NewModel builds the dashboard for cfg. Entries arriving on logChannel are
// shown in the activity log.
func NewModel(cfg Config, logChannel <-chan logging.LogEntry) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = pendingStyle

	m := Model{
		port:       cfg.Port,
		debug:      cfg.Debug,
		index:      make(map[string]int, len(cfg.Specs)),
		spinner:    s,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		showLog:    true,
		logChannel: logChannel,
		updates:    cfg.Updates,
		copyFn:     cfg.Copy,
	}
	if m.copyFn == nil {
		m.copyFn = clipboard.WriteAll
	}
	for _, spec := range cfg.Specs {
		m.index[spec.Name] = len(m.rows)
		m.rows = append(m.rows, tunnelRow{Name: spec.Name, Note: spec.Note})
	}
	return m
}

// Init starts the spinner and the listeners for tunnel events and logs.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		listenForUpdates(m.updates),
		listenForLogEntries(m.logChannel),
	)
}

// URLs returns the URLs discovered so far in dashboard order.
func (m Model) URLs() []string {
	var urls []string
	for _, r := range m.rows {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}
