package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/vito/boxdiff/pkg/ansidiff"
	"github.com/vito/boxdiff/pkg/flex"
	"github.com/vito/boxdiff/pkg/style"
)

const ellipsis = "…"

// FitText splits text into the lines it occupies in a box width cells wide.
// Lines that fit are kept as they are. Wider lines are word-wrapped or
// truncated according to mode. Wrapping is greedy and never breaks inside
// a word, so a single long word may still be wider than width.
func FitText(text string, width int, mode style.TextWrap) []string {
	text = ansidiff.ExpandTabs(text)
	lines := strings.Split(text, "\n")
	if width <= 0 {
		return lines
	}
	var out []string
	for _, line := range lines {
		if ansi.StringWidth(line) <= width {
			out = append(out, line)
			continue
		}
		switch mode {
		case style.Truncate:
			out = append(out, ansi.Truncate(line, width, ""))
		case style.TruncateEnd:
			out = append(out, ansi.Truncate(line, width, ellipsis))
		case style.TruncateStart:
			out = append(out, ansi.TruncateLeft(line, ansi.StringWidth(line)-width+1, ellipsis))
		case style.TruncateMiddle:
			out = append(out, truncateMiddle(line, width))
		default:
			out = append(out, strings.Split(ansi.Wordwrap(line, width, ""), "\n")...)
		}
	}
	return out
}

func truncateMiddle(line string, width int) string {
	if width < 2 {
		return ansi.Truncate(line, width, "")
	}
	keep := width - 1
	left := (keep + 1) / 2
	right := keep - left
	total := ansi.StringWidth(line)
	return ansi.Truncate(line, left, "") + ellipsis + ansi.TruncateLeft(line, total-right, "")
}

// TextWidth returns the width of the widest line of text.
func TextWidth(text string) int {
	w := 0
	for line := range strings.SplitSeq(ansidiff.ExpandTabs(text), "\n") {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

func blockWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, ansi.StringWidth(line))
	}
	return w
}

// measureText reports the intrinsic size of a text leaf. When the width is
// constrained below the natural width, the height is the number of lines
// the renderer will produce at that width.
func measureText(text string, mode style.TextWrap) flex.MeasureFunc {
	natural := TextWidth(text)
	height := strings.Count(text, "\n") + 1
	return func(width int, wm flex.MeasureMode) flex.Size {
		if text == "" {
			return flex.Size{}
		}
		if wm == flex.MeasureUndefined || width >= natural {
			return flex.Size{Width: natural, Height: height}
		}
		lines := FitText(text, width, mode)
		return flex.Size{Width: blockWidth(lines), Height: len(lines)}
	}
}
