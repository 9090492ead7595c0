package excel

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSheetNameSanitization(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nguyễn Văn A", "Nguyễn Văn A"},
		{"a/b\\c?d*e[f]g:h", "a b c d e f g h"},
		{"  padded  ", "padded"},
		{"", "Sheet"},
		{"///", "Sheet"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		got := newSheetNamer().Name(tt.in)
		if got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSheetNamerDisambiguatesCollisions(t *testing.T) {
	n := newSheetNamer()
	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		name := n.Name("A")
		if seen[name] {
			t.Fatalf("duplicate sheet name %q", name)
		}
		seen[name] = true
		if utf8.RuneCountInString(name) > 31 {
			t.Fatalf("name %q exceeds 31 chars", name)
		}
	}
	if !seen["A"] || !seen["A (1)"] || !seen["A (2)"] {
		t.Fatalf("unexpected name set: %v", seen)
	}
}

func TestSheetNamerCollidingLongNamesStayWithinLimit(t *testing.T) {
	n := newSheetNamer()
	long := strings.Repeat("y", 31)
	for i := 0; i < 3; i++ {
		name := n.Name(long)
		if utf8.RuneCountInString(name) > 31 {
			t.Fatalf("name %q exceeds 31 chars", name)
		}
	}
}
