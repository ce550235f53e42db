// Package markdown renders record details and docs for the terminal with
// glamour.
package markdown

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided because its
	// terminal queries can block.
	renderers = map[string]*glamour.TermRenderer{}
)

// Render renders md wrapped at width. On any renderer failure the source
// text is returned unchanged.
func Render(md string, width int, style string) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	style = normalizeStyle(style)
	key := style + ":" + strconv.Itoa(width)

	mu.Lock()
	r := renderers[key]
	mu.Unlock()

	if r == nil {
		cfg := StyleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mu.Lock()
		if existing := renderers[key]; existing != nil {
			r = existing
		} else {
			renderers[key] = rr
			r = rr
		}
		mu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func normalizeStyle(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "light") {
		return "light"
	}
	return "dark"
}

// StyleConfig is glamour's stock style with headings and text pinned to the
// console palette.
func StyleConfig(style string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	var text, accent string
	if normalizeStyle(style) == "light" {
		cfg = styles.LightStyleConfig
		text, accent = "#1f2328", "#0b6e4f"
	} else {
		cfg = styles.DarkStyleConfig
		text, accent = "#e6e6e6", "#5fd7af"
	}
	cfg.Text.Color = &text
	for _, h := range []*ansi.StyleBlock{&cfg.Heading, &cfg.H1, &cfg.H2, &cfg.H3} {
		h.Color = &accent
	}
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	faint := false
	cfg.BlockQuote.Faint = &faint
	return cfg
}

// Style picks "light" or "dark" for a theme preference ("auto", "light",
// "dark"). TRUSTDESK_MD_STYLE overrides everything.
func Style(theme string) string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TRUSTDESK_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	// COLORFGBG is often "fg;bg"; xterm colors 7-15 are light. Checked
	// before lipgloss because it never queries the terminal.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil && bg >= 0 {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
