// Package render paints a laid-out box tree into an Output buffer and
// splits frames into static and dynamic lines.
package render

import (
	"image/color"
	"strings"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/flex"
	"github.com/vito/boxdiff/pkg/layout"
	"github.com/vito/boxdiff/pkg/style"
)

// Options carry the state that flows from a node to its children.
type Options struct {
	// OffsetX and OffsetY locate the parent's top-left corner.
	OffsetX, OffsetY int
	// Transformers apply to every line written by the node and its
	// descendants, innermost first.
	Transformers []Transformer
	// SkipStatic leaves out static nodes; their output lives in the
	// static cache.
	SkipStatic bool
	// Background is inherited by text that sets none of its own.
	Background color.Color
}

// RenderNode paints h and its descendants into out. Nodes without a
// computed layout, hidden nodes, and frozen static nodes paint nothing.
func RenderNode(t *boxtree.Tree, h boxtree.Handle, out *Output, opts Options) {
	if opts.SkipStatic && t.IsStatic(h) {
		return
	}
	if t.StaticRendered(h) {
		return
	}
	ln := t.LayoutNode(h)
	if ln == nil {
		return
	}
	st := t.Style(h)
	if st.Hidden() {
		return
	}

	r := ln.Layout()
	x := opts.OffsetX + r.Left
	y := opts.OffsetY + r.Top

	transformers := opts.Transformers
	if tf := t.Transform(h); tf != nil {
		transformers = append([]Transformer{tf}, transformers...)
	}

	switch t.Kind(h) {
	case boxtree.Text:
		renderText(out, t.Text(h), x, y, r, st, transformers, opts.Background)

	case boxtree.Container:
		renderBackground(out, x, y, r, st)
		renderBorder(out, x, y, r, st.Border)

		clipped := st.ClipsX() || st.ClipsY()
		if clipped {
			b := st.Border.Widths()
			out.Clip(Clip{
				X1:    x + b.Left,
				X2:    x + r.Width - b.Right,
				Y1:    y + b.Top,
				Y2:    y + r.Height - b.Bottom,
				ClipX: st.ClipsX(),
				ClipY: st.ClipsY(),
			})
		}

		child := opts
		child.OffsetX, child.OffsetY = x, y
		child.Transformers = transformers
		if st.Background != nil {
			child.Background = st.Background
		}
		for c := range t.Children(h) {
			RenderNode(t, c, out, child)
		}

		if clipped {
			out.Unclip()
		}
	}
}

func renderText(out *Output, text string, x, y int, r flex.Layout, st style.Style, transformers []Transformer, bg color.Color) {
	if text == "" || r.Width <= 0 || r.Height <= 0 {
		return
	}
	inset := st.ContentInset()
	lines := layout.FitText(text, r.Width-inset.Left-inset.Right, st.TextWrap())

	sgr := st.TextSGR(bg)
	if sgr != "" {
		for i, line := range lines {
			lines[i] = style.Decorate(sgr, line)
		}
	}
	out.Write(x+inset.Left, y+inset.Top, strings.Join(lines, "\n"), transformers...)
}
