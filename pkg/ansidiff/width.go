package ansidiff

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// TabWidth is the fixed number of spaces a tab expands to. Tabs are not
// elastic: every tab becomes TabWidth spaces regardless of its column, so
// that visual columns can be addressed deterministically.
const TabWidth = 8

// ExpandTabs replaces every tab in text with TabWidth spaces.
func ExpandTabs(text string) string {
	if !strings.Contains(text, "\t") {
		return text
	}
	return strings.ReplaceAll(text, "\t", strings.Repeat(" ", TabWidth))
}

// VisibleWidth returns the terminal display width of a string, ignoring ANSI
// escape sequences and accounting for wide characters.
func VisibleWidth(s string) int {
	return ansi.StringWidth(s)
}

// Strip removes all escape sequences from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Uniform reports whether every visible character of text occupies exactly
// one terminal cell. Diff segments address one character per column, so
// lines that are not uniform cannot be patched in place.
func Uniform(text string) bool {
	for _, tok := range Tokenize(text) {
		if tok.ANSI {
			continue
		}
		for _, r := range tok.Value {
			if runewidth.RuneWidth(r) != 1 {
				return false
			}
		}
	}
	return true
}
