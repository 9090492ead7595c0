package excel

import (
	"strconv"
	"strings"
)

const maxSheetNameLen = 31

// sheetNamer hands out workbook-unique sheet names. Forbidden
// punctuation becomes spaces, names are capped at the xlsx limit and
// repeats get a " (n)" suffix that still fits the cap.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{used: make(map[string]bool)}
}

func (n *sheetNamer) Name(base string) string {
	name := strings.TrimSpace(stripForbidden(base))
	if name == "" {
		name = "Sheet"
	}
	name = truncate(name, maxSheetNameLen)

	raw := name
	for i := 1; n.used[name]; i++ {
		suffix := " (" + strconv.Itoa(i) + ")"
		name = truncate(raw, maxSheetNameLen-len(suffix)) + suffix
	}
	n.used[name] = true
	return name
}

func stripForbidden(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '?', '*', '[', ']', ':':
			return ' '
		}
		return r
	}, s)
}

// truncate cuts at a rune boundary so multi-byte names stay valid.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
