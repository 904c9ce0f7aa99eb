package flex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(style Style, children ...*Node) *Node {
	n := NewNode()
	n.Style = style
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func fixed(w, h int) *Node {
	return box(Style{Width: Point(w), Height: Point(h)})
}

func TestColumnStacksAndStretches(t *testing.T) {
	a := box(Style{Height: Point(2)})
	b := box(Style{Height: Point(3)})
	root := box(Style{}, a, b)
	root.CalculateLayout(20, 10)

	assert.Equal(t, Layout{Left: 0, Top: 0, Width: 20, Height: 10}, root.Layout())
	assert.Equal(t, Layout{Left: 0, Top: 0, Width: 20, Height: 2}, a.Layout())
	assert.Equal(t, Layout{Left: 0, Top: 2, Width: 20, Height: 3}, b.Layout())
}

func TestContentSizedRoot(t *testing.T) {
	root := box(Style{}, fixed(4, 2), fixed(6, 3))
	root.CalculateLayout(Undefined, Undefined)
	assert.Equal(t, 6, root.Layout().Width)
	assert.Equal(t, 5, root.Layout().Height)
}

func TestRowGrow(t *testing.T) {
	a := fixed(5, 1)
	b := box(Style{Grow: 1, Height: Point(1)})
	root := box(Style{Direction: Row}, a, b)
	root.CalculateLayout(20, 1)

	assert.Equal(t, 0, a.Layout().Left)
	assert.Equal(t, 5, b.Layout().Left)
	assert.Equal(t, 15, b.Layout().Width)
}

func TestGrowDistributesRemainder(t *testing.T) {
	a := box(Style{Grow: 1})
	b := box(Style{Grow: 1})
	c := box(Style{Grow: 1})
	root := box(Style{Direction: Row}, a, b, c)
	root.CalculateLayout(10, 1)

	assert.Equal(t, []int{4, 3, 3}, []int{a.Layout().Width, b.Layout().Width, c.Layout().Width})
	assert.Equal(t, []int{0, 4, 7}, []int{a.Layout().Left, b.Layout().Left, c.Layout().Left})
}

func TestRowShrink(t *testing.T) {
	a := box(Style{Width: Point(8), Shrink: 1})
	b := box(Style{Width: Point(8), Shrink: 1})
	root := box(Style{Direction: Row}, a, b)
	root.CalculateLayout(10, 1)
	assert.Equal(t, 5, a.Layout().Width)
	assert.Equal(t, 5, b.Layout().Width)
	assert.Equal(t, 5, b.Layout().Left)
}

func TestNoShrinkByDefault(t *testing.T) {
	a := fixed(8, 1)
	b := fixed(8, 1)
	root := box(Style{Direction: Row}, a, b)
	root.CalculateLayout(10, 1)
	assert.Equal(t, 8, b.Layout().Width)
	assert.Equal(t, 8, b.Layout().Left)
}

func TestJustify(t *testing.T) {
	for _, example := range []struct {
		name    string
		justify Justify
		lefts   []int
	}{
		{"start", JustifyStart, []int{0, 2, 4}},
		{"center", JustifyCenter, []int{7, 9, 11}},
		{"end", JustifyEnd, []int{14, 16, 18}},
		{"space-between", JustifySpaceBetween, []int{0, 9, 18}},
		{"space-around", JustifySpaceAround, []int{2, 9, 16}},
		{"space-evenly", JustifySpaceEvenly, []int{4, 10, 15}},
	} {
		t.Run(example.name, func(t *testing.T) {
			kids := []*Node{fixed(2, 1), fixed(2, 1), fixed(2, 1)}
			root := box(Style{Direction: Row, Justify: example.justify}, kids...)
			root.CalculateLayout(20, 1)
			var lefts []int
			for _, k := range kids {
				lefts = append(lefts, k.Layout().Left)
			}
			assert.Equal(t, example.lefts, lefts)
		})
	}
}

func TestAlignItems(t *testing.T) {
	for _, example := range []struct {
		align Align
		left  int
		width int
	}{
		{AlignStretch, 0, 10},
		{AlignStart, 0, 4},
		{AlignCenter, 3, 4},
		{AlignEnd, 6, 4},
	} {
		child := box(Style{Height: Point(1)}, fixed(4, 1))
		root := box(Style{AlignItems: example.align}, child)
		root.CalculateLayout(10, 5)
		assert.Equal(t, example.left, child.Layout().Left, "align %d", example.align)
		assert.Equal(t, example.width, child.Layout().Width, "align %d", example.align)
	}
}

func TestAlignSelfOverrides(t *testing.T) {
	child := box(Style{Width: Point(2), Height: Point(1), AlignSelf: AlignEnd})
	root := box(Style{AlignItems: AlignStart}, child)
	root.CalculateLayout(10, 5)
	assert.Equal(t, 8, child.Layout().Left)
}

func TestPaddingBorderMargin(t *testing.T) {
	child := box(Style{Height: Point(1), Margin: Edges{Top: 1, Left: 2}})
	root := box(Style{
		Padding: Edges{1, 1, 1, 1},
		Border:  Edges{1, 1, 1, 1},
	}, child)
	root.CalculateLayout(20, 10)

	assert.Equal(t, Layout{Left: 4, Top: 3, Width: 14, Height: 1}, child.Layout())
}

func TestGap(t *testing.T) {
	a := fixed(1, 1)
	b := fixed(1, 1)
	root := box(Style{RowGap: 1}, a, b)
	root.CalculateLayout(Undefined, Undefined)
	assert.Equal(t, 2, b.Layout().Top)
	assert.Equal(t, 3, root.Layout().Height)
}

func TestWrap(t *testing.T) {
	kids := []*Node{fixed(4, 1), fixed(4, 1), fixed(4, 1)}
	root := box(Style{Direction: Row, Wrap: WrapLines}, kids...)
	root.CalculateLayout(10, Undefined)

	assert.Equal(t, 0, kids[0].Layout().Top)
	assert.Equal(t, 4, kids[1].Layout().Left)
	assert.Equal(t, 0, kids[2].Layout().Left)
	assert.Equal(t, 1, kids[2].Layout().Top)
	assert.Equal(t, 2, root.Layout().Height)
}

func TestPercent(t *testing.T) {
	child := box(Style{Width: Percent(50), Height: Percent(20)})
	root := box(Style{AlignItems: AlignStart}, child)
	root.CalculateLayout(20, 10)
	assert.Equal(t, 10, child.Layout().Width)
	assert.Equal(t, 2, child.Layout().Height)
}

func TestMinMax(t *testing.T) {
	a := box(Style{Grow: 1, MaxWidth: Point(3)})
	b := box(Style{MinWidth: Point(4)})
	root := box(Style{Direction: Row}, a, b)
	root.CalculateLayout(20, 1)
	assert.Equal(t, 3, a.Layout().Width)
	assert.Equal(t, 4, b.Layout().Width)
}

func TestRowReverse(t *testing.T) {
	a := fixed(3, 1)
	b := fixed(2, 1)
	root := box(Style{Direction: RowReverse}, a, b)
	root.CalculateLayout(10, 1)
	assert.Equal(t, 7, a.Layout().Left)
	assert.Equal(t, 5, b.Layout().Left)
}

func TestAbsolute(t *testing.T) {
	flow := box(Style{Height: Point(2)})
	abs := box(Style{Position: Absolute, Left: Point(2), Top: Point(1), Width: Point(3), Height: Point(1)})
	corner := box(Style{Position: Absolute, Right: Point(0), Bottom: Point(0), Width: Point(2), Height: Point(1)})
	root := box(Style{Border: Edges{1, 1, 1, 1}}, flow, abs, corner)
	root.CalculateLayout(10, 6)

	assert.Equal(t, Layout{Left: 1, Top: 1, Width: 8, Height: 2}, flow.Layout())
	assert.Equal(t, Layout{Left: 3, Top: 2, Width: 3, Height: 1}, abs.Layout())
	assert.Equal(t, Layout{Left: 7, Top: 4, Width: 2, Height: 1}, corner.Layout())
}

func TestRelativeOffset(t *testing.T) {
	child := box(Style{Height: Point(1), Left: Point(2), Top: Point(1)})
	root := box(Style{}, child)
	root.CalculateLayout(10, 5)
	assert.Equal(t, 2, child.Layout().Left)
	assert.Equal(t, 1, child.Layout().Top)
}

func TestDisplayNone(t *testing.T) {
	hidden := box(Style{Display: DisplayNone, Height: Point(3)}, fixed(2, 2))
	shown := fixed(2, 1)
	root := box(Style{}, hidden, shown)
	root.CalculateLayout(Undefined, Undefined)

	assert.Equal(t, Layout{}, hidden.Layout())
	assert.Equal(t, 0, shown.Layout().Top)
	assert.Equal(t, 1, root.Layout().Height)
}

func TestMeasureFunc(t *testing.T) {
	var calls []MeasureMode
	text := NewNode()
	text.SetMeasureFunc(func(width int, mode MeasureMode) Size {
		calls = append(calls, mode)
		// ten cells of text, wrapped at the given width
		if mode != MeasureUndefined && width < 10 {
			return Size{Width: width, Height: (10 + width - 1) / width}
		}
		return Size{Width: 10, Height: 1}
	})
	text.Style.Padding = Edges{Left: 1}
	root := box(Style{Width: Point(6)}, text)
	root.CalculateLayout(Undefined, Undefined)

	require.NotEmpty(t, calls)
	assert.Equal(t, 6, text.Layout().Width)
	assert.Equal(t, 2, text.Layout().Height)
	assert.Equal(t, 2, root.Layout().Height)
}

func TestTreeOps(t *testing.T) {
	root := NewNode()
	a, b, c := NewNode(), NewNode(), NewNode()
	root.AppendChild(a)
	root.AppendChild(c)
	root.InsertChild(b, 1)
	require.Equal(t, 3, root.ChildCount())
	assert.Same(t, b, root.Child(1))
	assert.Same(t, root, b.Parent())

	other := NewNode()
	other.AppendChild(b)
	assert.Equal(t, 2, root.ChildCount())
	assert.Same(t, other, b.Parent())

	assert.True(t, root.RemoveChild(a))
	assert.False(t, root.RemoveChild(a))
	assert.Nil(t, a.Parent())

	root.RemoveAllChildren()
	assert.Zero(t, root.ChildCount())
	assert.Nil(t, c.Parent())
}

func TestDistribute(t *testing.T) {
	assert.Equal(t, []int{4, 3, 3}, distribute(10, []float64{1, 1, 1}))
	assert.Equal(t, []int{0, 10}, distribute(10, []float64{0, 2}))
	assert.Equal(t, []int{0, 0}, distribute(10, []float64{0, 0}))
}
