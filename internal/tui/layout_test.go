package tui

import (
	"strings"
	"testing"

	"trustdesk-cli/internal/listing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestNormalizePane(t *testing.T) {
	t.Parallel()

	got := normalizePane("abcdef\nxy", 4, 3)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	want := []string{"abc…", "xy  ", "    "}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("line %d = %q, want %q", i, lines[i], w)
		}
	}
	for _, ln := range lines {
		if w := xansi.StringWidth(ln); w != 4 {
			t.Fatalf("width of %q = %d", ln, w)
		}
	}
}

func TestScrollLines(t *testing.T) {
	t.Parallel()

	text := "1\n2\n3\n4\n5\n"
	tests := []struct {
		offset     int
		height     int
		want       string
		wantOffset int
	}{
		{offset: 0, height: 2, want: "1\n2", wantOffset: 0},
		{offset: 2, height: 2, want: "3\n4", wantOffset: 2},
		{offset: 9, height: 2, want: "4\n5", wantOffset: 3},
		{offset: -3, height: 2, want: "1\n2", wantOffset: 0},
		{offset: 1, height: 10, want: "1\n2\n3\n4\n5", wantOffset: 0},
	}
	for _, tt := range tests {
		got, off := scrollLines(text, tt.offset, tt.height)
		if got != tt.want || off != tt.wantOffset {
			t.Fatalf("scrollLines(%d,%d) = %q,%d want %q,%d", tt.offset, tt.height, got, off, tt.want, tt.wantOffset)
		}
	}
}

func TestPagerLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info listing.PageInfo
		want string
	}{
		{
			name: "middle",
			info: listing.PageInfo{CurrentPage: 5, LastPage: 10, PerPage: 15, Total: 150},
			want: "‹ 1 … 4 [5] 6 … 10 ›   Showing 61 to 75 of 150",
		},
		{
			name: "single empty page hides the summary",
			info: listing.PageInfo{CurrentPage: 1, LastPage: 1, PerPage: 15, Total: 0},
			want: "‹ [1] ›",
		},
		{
			name: "partial last page",
			info: listing.PageInfo{CurrentPage: 3, LastPage: 3, PerPage: 15, Total: 40},
			want: "‹ 1 2 [3] ›   Showing 31 to 40 of 40",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := xansi.Strip(pagerLine(tt.info)); got != tt.want {
				t.Fatalf("pagerLine = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThemeDark(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		wantDark bool
		wantOK   bool
	}{
		{"light", false, true},
		{" Dark ", true, true},
		{"auto", false, false},
		{"", false, false},
		{"solarized", false, false},
	}
	for _, tt := range tests {
		dark, ok := themeDark(tt.in)
		if dark != tt.wantDark || ok != tt.wantOK {
			t.Fatalf("themeDark(%q) = %v,%v", tt.in, dark, ok)
		}
	}
}
