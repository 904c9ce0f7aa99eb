package style

import (
	"image/color"

	"github.com/charmbracelet/x/ansi"
)

// Reset clears every SGR attribute.
const Reset = "\x1b[0m"

// SGR returns the escape sequence that turns on the text decoration, or ""
// if there is none. bg is used when the text sets no background of its own.
func (t Text) SGR(bg color.Color) string {
	var s ansi.Style
	if t.Dim {
		s = s.Faint()
	}
	if t.Color != nil {
		s = s.ForegroundColor(t.Color)
	}
	if bg != nil {
		s = s.BackgroundColor(bg)
	}
	if t.Bold {
		s = s.Bold()
	}
	if t.Italic {
		s = s.Italic(true)
	}
	if t.Underline {
		s = s.Underline(true)
	}
	if t.Strikethrough {
		s = s.Strikethrough(true)
	}
	if t.Inverse {
		s = s.Reverse(true)
	}
	if len(s) == 0 {
		return ""
	}
	return s.String()
}

// Decorate wraps str in the given SGR prefix and a reset.
func Decorate(prefix, str string) string {
	if prefix == "" || str == "" {
		return str
	}
	return prefix + str + Reset
}

// TextSGR returns the SGR prefix for a text node, using inherited as the
// background when the node declares none.
func (s Style) TextSGR(inherited color.Color) string {
	bg := s.Background
	if bg == nil {
		bg = inherited
	}
	return s.Text.SGR(bg)
}

// BackgroundSGR returns the SGR prefix that paints the node's background.
func (s Style) BackgroundSGR() string {
	if s.Background == nil {
		return ""
	}
	return ansi.Style{}.BackgroundColor(s.Background).String()
}

// EdgeSGR returns the SGR prefix for one border edge.
func (b Border) EdgeSGR(side Side) string {
	return Text{Color: b.EdgeColor(side), Dim: b.EdgeDim(side)}.SGR(nil)
}
