package render

import (
	"strings"

	"github.com/vito/boxdiff/pkg/flex"
	"github.com/vito/boxdiff/pkg/style"
)

// renderBorder draws the visible edges of a box. A corner is drawn only
// when both edges meeting there are visible.
func renderBorder(out *Output, x, y int, r flex.Layout, b style.Border) {
	if b.Name == "" || r.Width <= 0 || r.Height <= 0 {
		return
	}
	g := b.Glyphs
	top, right := b.Visible(style.Top), b.Visible(style.Right)
	bottom, left := b.Visible(style.Bottom), b.Visible(style.Left)

	inner := r.Width
	if left {
		inner--
	}
	if right {
		inner--
	}
	inner = max(inner, 0)

	edge := func(l, mid, rt string) string {
		var s strings.Builder
		if left {
			s.WriteString(l)
		}
		s.WriteString(strings.Repeat(mid, inner))
		if right {
			s.WriteString(rt)
		}
		return s.String()
	}

	if top {
		out.Write(x, y, style.Decorate(b.EdgeSGR(style.Top), edge(g.TopLeft, g.Top, g.TopRight)))
	}

	vertical := r.Height
	if top {
		vertical--
	}
	if bottom {
		vertical--
	}
	vertical = max(vertical, 0)
	offsetY := 0
	if top {
		offsetY = 1
	}
	column := func(side style.Side, glyph string) string {
		ch := style.Decorate(b.EdgeSGR(side), glyph)
		return strings.TrimSuffix(strings.Repeat(ch+"\n", vertical), "\n")
	}
	if left && vertical > 0 {
		out.Write(x, y+offsetY, column(style.Left, g.Left))
	}
	if right && vertical > 0 {
		out.Write(x+r.Width-1, y+offsetY, column(style.Right, g.Right))
	}

	if bottom {
		out.Write(x, y+r.Height-1, style.Decorate(b.EdgeSGR(style.Bottom), edge(g.BottomLeft, g.Bottom, g.BottomRight)))
	}
}

// renderBackground fills the part of a box inside its visible border with
// background-colored spaces.
func renderBackground(out *Output, x, y int, r flex.Layout, st style.Style) {
	sgr := st.BackgroundSGR()
	if sgr == "" {
		return
	}
	b := st.Border.Widths()
	w := r.Width - b.Left - b.Right
	h := r.Height - b.Top - b.Bottom
	if w <= 0 || h <= 0 {
		return
	}
	line := style.Decorate(sgr, strings.Repeat(" ", w))
	for row := range h {
		out.Write(x+b.Left, y+b.Top+row, line)
	}
}
