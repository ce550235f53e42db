package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws a text input as exactly one line of bodyW columns.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// A newline in the view would wrap inside the modal and look like the
	// input inserted one.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Reset styling so the cut does not bleed color into the next line.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// renderLabel draws a form label, marking required fields and the focused
// one.
func renderLabel(label string, required, focused bool) string {
	if required {
		label += " *"
	}
	st := lipgloss.NewStyle().Foreground(colorChromeFg)
	if focused {
		st = st.Bold(true).Foreground(colorAccent)
	}
	return st.Render(label)
}
