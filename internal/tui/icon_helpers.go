package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// SafeIcon wraps an icon with proper spacing to prevent rendering issues.
// Icons occupying two cells get two trailing spaces so that at least one
// space stays visible after them.
func SafeIcon(icon string) string {
	spaces := 1
	if runewidth.StringWidth(icon) >= 2 {
		spaces = 2
	}
	return fmt.Sprintf("%s%s", icon, strings.Repeat(" ", spaces))
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
