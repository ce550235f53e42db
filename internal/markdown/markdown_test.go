package markdown

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/x/ansi"
)

func TestStyle_ThemeAndOverrides(t *testing.T) {
	t.Setenv("TRUSTDESK_MD_STYLE", "")
	t.Setenv("COLORFGBG", "")

	if got := Style("light"); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}
	if got := Style("dark"); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}

	t.Setenv("COLORFGBG", "0;15")
	if got := Style("auto"); got != "light" {
		t.Fatalf("COLORFGBG light bg: got %q", got)
	}
	t.Setenv("COLORFGBG", "15;0")
	if got := Style("auto"); got != "dark" {
		t.Fatalf("COLORFGBG dark bg: got %q", got)
	}

	t.Setenv("TRUSTDESK_MD_STYLE", "dark")
	if got := Style("light"); got != "dark" {
		t.Fatalf("override should win; got %q", got)
	}
}

func TestStyleConfig_KeepsStockLinks(t *testing.T) {
	t.Parallel()

	got := StyleConfig("dark")
	want := styles.DarkStyleConfig
	if (got.Link.Color == nil) != (want.Link.Color == nil) {
		t.Fatalf("link color changed")
	}
	if got.Link.Color != nil && *got.Link.Color != *want.Link.Color {
		t.Fatalf("link color: got %q want %q", *got.Link.Color, *want.Link.Color)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	if Render("   ", 80, "dark") != "" {
		t.Fatalf("blank input should render empty")
	}
	out := ansi.Strip(Render("# Ann\n\n| Field | Value |\n|---|---|\n| Email | ann@example.com |", 80, "dark"))
	if !strings.Contains(out, "Ann") || !strings.Contains(out, "ann@example.com") {
		t.Fatalf("unexpected render:\n%s", out)
	}
}
