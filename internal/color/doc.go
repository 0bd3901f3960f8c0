// Package color adjusts lipgloss rendering to the user's terminal.
//
// Colors follow the terminal's detected profile and background. Two
// environment variables override the detection:
//
//   - NO_COLOR: render plain text
//   - TUNNELCTL_THEME: "dark" or "light" forces the adaptive palette
package color
