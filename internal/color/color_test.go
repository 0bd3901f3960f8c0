package color

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func envMap(m map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		isDarkMode bool
		expected   bool
	}{
		{"set dark mode", true, true},
		{"set light mode", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Initialize(tt.isDarkMode)
			assert.Equal(t, tt.expected, lipgloss.HasDarkBackground())
		})
	}
}

func TestSetupTheme(t *testing.T) {
	Initialize(false)
	assert.True(t, Setup(envMap(map[string]string{ThemeEnv: " Dark "})))
	assert.True(t, lipgloss.HasDarkBackground())

	assert.True(t, Setup(envMap(map[string]string{ThemeEnv: "light"})))
	assert.False(t, lipgloss.HasDarkBackground())

	assert.False(t, Setup(envMap(map[string]string{ThemeEnv: "sepia"})))
	assert.False(t, lipgloss.HasDarkBackground())

	assert.True(t, Setup(envMap(nil)))
}

func TestSetupNoColor(t *testing.T) {
	original := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(original) })

	lipgloss.SetColorProfile(termenv.TrueColor)
	Setup(envMap(map[string]string{"NO_COLOR": ""}))
	assert.Equal(t, termenv.TrueColor, lipgloss.ColorProfile())

	Setup(envMap(map[string]string{"NO_COLOR": "1"}))
	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
}
