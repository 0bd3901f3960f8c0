package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Constants for TUI behavior.
const (
	// maxLogLines bounds the in-memory activity log.
	maxLogLines = 200
	// visibleLogLines is how many log lines the dashboard shows below the tunnels.
	visibleLogLines = 8
	// statusMessageDuration is how long transient status messages stay visible.
	statusMessageDuration = 3 * time.Second
)

const (
	IconCheck     = "✔" // U+2714
	IconCross     = "✖" // U+2716
	IconHourglass = "⏳" // U+23F3
	IconLink      = "🔗" // U+1F517
	IconScroll    = "📜" // U+1F4DC
)

var (
	// headerStyle is for the title bar at the top of the dashboard.
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}).
			Background(lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#303030"}).
			Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"})
	urlStyle     = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.AdaptiveColor{Light: "#0000CC", Dark: "#58A6FF"})
	noteStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#606060", Dark: "#909090"})
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A07000", Dark: "#FFD066"})
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#006600", Dark: "#8AE234"}).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"})

	logPanelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"})

	// Log level styles, applied per line in prepareLogContent.
	logInfoStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#E0E0E0"})
	logWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#A07000", Dark: "#FFD066"}).Bold(true)
	logErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B30000", Dark: "#FF6B6B"}).Bold(true)
	logDebugStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#606060", Dark: "#909090"}).Italic(true)

	statusBarStyle = lipgloss.NewStyle().Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#606060", Dark: "#909090"})
)
