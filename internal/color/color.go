package color

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ThemeEnv forces the dark or light palette when set to "dark" or "light".
const ThemeEnv = "TUNNELCTL_THEME"

// LookupEnv is the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Initialize tells lipgloss which background the adaptive colors are
// rendered against.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// Setup applies the color environment variables. NO_COLOR disables colors
// entirely, ThemeEnv overrides background detection. Unknown theme values
// are ignored and reported as false.
func Setup(lookup LookupEnv) bool {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup("NO_COLOR"); ok && v != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	theme, ok := lookup(ThemeEnv)
	if !ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "dark":
		Initialize(true)
	case "light":
		Initialize(false)
	default:
		return false
	}
	return true
}
