// Package layout mirrors a box tree into flex nodes and solves it.
package layout

import (
	"fmt"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/flex"
	"github.com/vito/boxdiff/pkg/style"
)

// Undefined as a width or height lets the root take its content size.
const Undefined = flex.Undefined

// Calculate lays out the tree rooted at root within width x height.
//
// Layout nodes are created lazily and kept bound to their box nodes between
// calls; each call re-applies every style and reconciles the layout
// children with the current box children. Static nodes that have already
// been rendered are left out of the layout tree.
func Calculate(t *boxtree.Tree, root boxtree.Handle, width, height int) error {
	if !t.Valid(root) {
		return fmt.Errorf("layout %s: %w", root, boxtree.ErrStaleHandle)
	}
	if t.StaticRendered(root) {
		return nil
	}
	ln, err := mirror(t, root)
	if err != nil {
		return err
	}
	ln.CalculateLayout(width, height)
	return nil
}

// Rect returns the computed box of h relative to its parent, and whether h
// has one.
func Rect(t *boxtree.Tree, h boxtree.Handle) (flex.Layout, bool) {
	ln := t.LayoutNode(h)
	if ln == nil {
		return flex.Layout{}, false
	}
	return ln.Layout(), true
}

func mirror(t *boxtree.Tree, h boxtree.Handle) (*flex.Node, error) {
	ln := t.LayoutNode(h)
	if ln == nil {
		ln = flex.NewNode()
		if err := t.BindLayout(h, ln); err != nil {
			return nil, err
		}
	}
	st := t.Style(h)
	ln.Style = FlexStyle(st)

	if t.Kind(h) == boxtree.Text {
		ln.SetMeasureFunc(measureText(t.Text(h), st.TextWrap()))
		return ln, nil
	}
	ln.SetMeasureFunc(nil)

	var want []*flex.Node
	for c := range t.Children(h) {
		if t.StaticRendered(c) {
			continue
		}
		cn, err := mirror(t, c)
		if err != nil {
			return nil, err
		}
		want = append(want, cn)
	}
	if !sameChildren(ln, want) {
		ln.RemoveAllChildren()
		for _, cn := range want {
			ln.AppendChild(cn)
		}
	}
	return ln, nil
}

func sameChildren(ln *flex.Node, want []*flex.Node) bool {
	if ln.ChildCount() != len(want) {
		return false
	}
	for i, cn := range want {
		if ln.Child(i) != cn {
			return false
		}
	}
	return true
}

// FlexStyle converts a resolved style into flex constraints.
func FlexStyle(s style.Style) flex.Style {
	b := s.Border.Widths()
	return flex.Style{
		Direction:  direction(s.FlexDirection),
		Wrap:       wrap(s.FlexWrap),
		Grow:       max(s.FlexGrow, 0),
		Shrink:     max(s.FlexShrink, 0),
		Basis:      value(s.FlexBasis),
		AlignItems: align(s.AlignItems),
		AlignSelf:  align(s.AlignSelf),
		Justify:    justify(s.JustifyContent),

		Width:     value(s.Width),
		Height:    value(s.Height),
		MinWidth:  value(s.MinWidth),
		MinHeight: value(s.MinHeight),
		MaxWidth:  value(s.MaxWidth),
		MaxHeight: value(s.MaxHeight),

		Margin:  edges(s.Margin),
		Padding: edges(s.Padding),
		Border:  edges(b),

		RowGap:    max(s.RowGap, 0),
		ColumnGap: max(s.ColumnGap, 0),

		Position: position(s.Position),
		Top:      value(s.Inset.Top),
		Right:    value(s.Inset.Right),
		Bottom:   value(s.Inset.Bottom),
		Left:     value(s.Inset.Left),

		Display: display(s.Display),
	}
}

func value(d style.Dimension) flex.Value {
	switch d.Unit {
	case style.UnitPoint:
		return flex.Value{Value: d.Value, Unit: flex.UnitPoint}
	case style.UnitPercent:
		return flex.Value{Value: d.Value, Unit: flex.UnitPercent}
	case style.UnitAuto:
		return flex.Value{Unit: flex.UnitAuto}
	}
	return flex.Value{}
}

func edges(e style.Edges) flex.Edges {
	return flex.Edges{
		Top:    max(e.Top, 0),
		Right:  max(e.Right, 0),
		Bottom: max(e.Bottom, 0),
		Left:   max(e.Left, 0),
	}
}

func direction(d style.FlexDirection) flex.Direction {
	switch d {
	case style.Row:
		return flex.Row
	case style.RowReverse:
		return flex.RowReverse
	case style.ColumnReverse:
		return flex.ColumnReverse
	}
	return flex.Column
}

func wrap(w style.FlexWrap) flex.Wrap {
	switch w {
	case style.Wrap:
		return flex.WrapLines
	case style.WrapReverse:
		return flex.WrapReverse
	}
	return flex.NoWrap
}

func align(a style.Align) flex.Align {
	switch a {
	case style.AlignStart:
		return flex.AlignStart
	case style.AlignCenter:
		return flex.AlignCenter
	case style.AlignEnd:
		return flex.AlignEnd
	case style.AlignStretch:
		return flex.AlignStretch
	}
	return flex.AlignAuto
}

func justify(j style.Justify) flex.Justify {
	switch j {
	case style.JustifyCenter:
		return flex.JustifyCenter
	case style.JustifyEnd:
		return flex.JustifyEnd
	case style.JustifySpaceBetween:
		return flex.JustifySpaceBetween
	case style.JustifySpaceAround:
		return flex.JustifySpaceAround
	case style.JustifySpaceEvenly:
		return flex.JustifySpaceEvenly
	}
	return flex.JustifyStart
}

func position(p style.Position) flex.PositionType {
	if p == style.Absolute {
		return flex.Absolute
	}
	return flex.Relative
}

func display(d style.Display) flex.Display {
	if d == style.DisplayNone {
		return flex.DisplayNone
	}
	return flex.DisplayFlex
}
