package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func (f confirmModalFocus) toggle() confirmModalFocus {
	if f == confirmFocusConfirm {
		return confirmFocusCancel
	}
	return confirmFocusConfirm
}

// confirmState is the open delete confirmation.
type confirmState struct {
	id    int64
	label string
	focus confirmModalFocus
}

const (
	modalMaxWidth = 72
	modalPadX     = 2
)

// modalWidth is the outer width of a modal for a screen of width w.
func modalWidth(w int) int {
	if w <= 0 {
		return modalMaxWidth
	}
	mw := w - 4
	if mw > modalMaxWidth {
		mw = modalMaxWidth
	}
	if mw < 24 {
		mw = 24
	}
	return mw
}

func modalBodyWidth(w int) int {
	return modalWidth(w) - 2*modalPadX
}

// renderModalBox draws a titled box without borders; nested borders inside
// a colored background leave artifacts on some terminals.
func renderModalBox(width int, title, content string) string {
	mw := modalWidth(width)
	header := lipgloss.NewStyle().
		Width(mw).
		Padding(0, modalPadX).
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Render(title)
	body := lipgloss.NewStyle().
		Width(mw).
		Padding(1, modalPadX).
		Foreground(colorSurfaceFg).
		Background(colorSurfaceBg).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	} else {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y/n: answer   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}
