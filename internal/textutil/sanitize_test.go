package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFileStem(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "vibe"},
		{"only spaces", "   \t ", "vibe"},
		{"plain", "  watercolor  ", "watercolor"},
		{"separators", "a/b\\c:d*e", "a-b-c-d-e"},
		{"reserved dropped", `what? "quoted" <x>|`, "what quoted x"},
		{"only reserved", "?", "vibe"},
		{"whitespace collapsed", "soft\t\tlight\n  study", "soft light study"},
		{"control dropped", "ink\x00wash\x1b", "inkwash"},
		{"dot names", "..", "vibe"},
		{"leading dots", "../../etc", "-..-etc"},
		{"hidden", ".secret.", "secret"},
		{"unicode kept", "水彩 スタディ", "水彩 スタディ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileStem(tt.in, "vibe"); got != tt.want {
				t.Errorf("FileStem(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileStemLimitsLength(t *testing.T) {
	got := FileStem(strings.Repeat("é", 200), "vibe")
	if n := utf8.RuneCountInString(got); n != maxStemRunes {
		t.Fatalf("expected %d runes, got %d", maxStemRunes, n)
	}
}
