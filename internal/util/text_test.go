package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact width unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"width 3 is only the ellipsis", "hello", 3, "..."},
		{"width 2 cuts the ellipsis", "hello", 2, ".."},
		{"zero width is empty", "hello", 0, ""},
		{"negative width is empty", "hello", -1, ""},
		{"empty input", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxWidth); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.expected)
			}
		})
	}
}

func TestTruncate_Styled(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("ERROR - cannot decode method body")

	got := Truncate(styled, 12)
	if w := lipgloss.Width(got); w > 12 {
		t.Errorf("width = %d, want <= 12", w)
	}
	if !strings.HasSuffix(stripped(got), "...") {
		t.Errorf("Truncate() = %q, want trailing ellipsis", got)
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"fits", "/out/Foo.java", 20, "/out/Foo.java"},
		{"keeps the tail", "/home/me/.cache/smali2java/decompiled/com/example/Foo.java", 20, ".../example/Foo.java"},
		{"multibyte", "/out ü/com/Foo.java", 14, "...om/Foo.java"},
		{"tiny width", "/out/Foo.java", 3, "..."},
		{"zero width", "/out/Foo.java", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.input, tt.maxWidth)
			if got != tt.expected {
				t.Errorf("TruncatePath(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.expected)
			}
			if w := lipgloss.Width(got); w > max(tt.maxWidth, 0) {
				t.Errorf("width = %d exceeds %d", w, tt.maxWidth)
			}
		})
	}
}

// stripped removes SGR sequences so the visible text can be compared.
func stripped(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
