package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles tunnel events, log entries and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case URLDiscoveredMsg:
		m.setURL(msg.Name, msg.URL, msg.Note)
		return m, listenForUpdates(m.updates)

	case URLsPublishedMsg:
		m.published = true
		for _, u := range msg.URLs {
			m.setURL(u.Name, u.URL, u.Note)
		}
		missing := 0
		for i := range m.rows {
			if m.rows[i].State == stateWaiting {
				m.rows[i].State = stateMissing
				missing++
			}
		}
		if missing > 0 {
			return m, tea.Batch(listenForUpdates(m.updates), m.setStatus(fmt.Sprintf("Timed out, %d tunnel(s) without URL", missing), true))
		}
		return m, tea.Batch(listenForUpdates(m.updates), m.setStatus("All tunnels are up", false))

	case NewLogEntryMsg:
		m.logLines = append(m.logLines, formatLogEntry(msg.Entry))
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		return m, listenForLogEntries(m.logChannel)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.status = "Shutting down tunnels..."
		return m, tea.Quit

	case key.Matches(msg, m.keys.Copy):
		urls := m.URLs()
		if len(urls) == 0 {
			return m, m.setStatus("No URLs to copy yet", true)
		}
		if err := m.copyFn(strings.Join(urls, "\n")); err != nil {
			return m, m.setStatus(fmt.Sprintf("Copy failed: %v", err), true)
		}
		return m, m.setStatus(fmt.Sprintf("Copied %d URL(s) to clipboard", len(urls)), false)

	case key.Matches(msg, m.keys.ToggleLog):
		m.showLog = !m.showLog
		return m, nil
	}
	return m, nil
}

// setURL records url for the named tunnel. Unknown names get a row of their own.
func (m *Model) setURL(name, url, note string) {
	i, ok := m.index[name]
	if !ok {
		i = len(m.rows)
		m.index[name] = i
		m.rows = append(m.rows, tunnelRow{Name: name})
	}
	m.rows[i].URL = url
	if note != "" {
		m.rows[i].Note = note
	}
	m.rows[i].State = stateFound
}

// setStatus shows text in the status bar and schedules its removal.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusErr = isErr
	seq := m.statusSeq
	return tea.Tick(statusMessageDuration, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}
