package screen

import (
	"fmt"
	"strings"

	"github.com/vito/boxdiff/pkg/ansidiff"
)

const (
	clearScreen = "\x1b[2J\x1b[3J\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	clearLine   = "\x1b[2K"
	clearToEnd  = "\x1b[0K"
)

// moveTo positions the cursor at a 0-based row and column.
func moveTo(buf *strings.Builder, row, col int) {
	fmt.Fprintf(buf, "\x1b[%d;%dH", row+1, col+1)
}

// updateLine rewrites the parts of a screen row that differ between
// oldText and newText.
//
// Tabs are expanded to fixed spaces so that columns can be addressed. A
// line holding characters that are not one cell wide is rewritten whole,
// since segments address one character per column.
func updateLine(buf *strings.Builder, row int, oldText, newText string) {
	oldText = ansidiff.ExpandTabs(oldText)
	newText = ansidiff.ExpandTabs(newText)

	if !ansidiff.Uniform(oldText) || !ansidiff.Uniform(newText) {
		moveTo(buf, row, 0)
		buf.WriteString(clearLine)
		buf.WriteString(newText)
		buf.WriteString(ansidiff.Reset)
		return
	}

	segments := ansidiff.FindDiffSegments(oldText, newText)
	if len(segments) == 0 {
		return
	}

	oldLen := ansidiff.VisualLength(oldText)
	newLen := ansidiff.VisualLength(newText)
	if newLen == 0 && oldLen > 0 {
		moveTo(buf, row, 0)
		buf.WriteString(clearLine)
		return
	}

	for i, seg := range segments {
		moveTo(buf, row, seg.Start)
		// old backgrounds must not bleed into the new text
		buf.WriteString(ansidiff.Reset)
		buf.WriteString(seg.Text)
		if i == len(segments)-1 && (newLen < oldLen || seg.Text == "") {
			moveTo(buf, row, newLen)
			buf.WriteString(clearToEnd)
		}
	}
	buf.WriteString(ansidiff.Reset)
}
