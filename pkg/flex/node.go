// Package flex is a small flexbox solver working in whole terminal cells.
//
// It follows Yoga's model: a tree of Nodes, each with a Style, laid out by
// CalculateLayout on the root. Leaves may carry a MeasureFunc reporting
// their intrinsic size. After layout every node exposes its computed
// position relative to its parent and its border-box size.
package flex

import (
	"fmt"
	"slices"
)

// Undefined marks a size that is not known and should be derived from
// content.
const Undefined = -1 << 30

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v int) bool {
	return v == Undefined
}

type Direction uint8

const (
	Column Direction = iota
	Row
	ColumnReverse
	RowReverse
)

func (d Direction) isRow() bool {
	return d == Row || d == RowReverse
}

func (d Direction) isReverse() bool {
	return d == RowReverse || d == ColumnReverse
}

type Wrap uint8

const (
	NoWrap Wrap = iota
	WrapLines
	WrapReverse
)

type Align uint8

const (
	AlignAuto Align = iota
	AlignStretch
	AlignStart
	AlignCenter
	AlignEnd
)

type Justify uint8

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

type PositionType uint8

const (
	Relative PositionType = iota
	Absolute
)

type Display uint8

const (
	DisplayFlex Display = iota
	DisplayNone
)

type Unit uint8

const (
	UnitUndefined Unit = iota
	UnitPoint
	UnitPercent
	UnitAuto
)

// Value is a style length.
type Value struct {
	Value float64
	Unit  Unit
}

// Point returns a length of n cells.
func Point(n int) Value {
	return Value{Value: float64(n), Unit: UnitPoint}
}

// Percent returns a length relative to the parent's content box.
func Percent(p float64) Value {
	return Value{Value: p, Unit: UnitPercent}
}

// resolve returns the length in cells. Percentages of an undefined owner
// size, auto, and undefined values do not resolve.
func (v Value) resolve(owner int) (int, bool) {
	switch v.Unit {
	case UnitPoint:
		return int(v.Value), true
	case UnitPercent:
		if IsUndefined(owner) {
			return 0, false
		}
		return int(v.Value * float64(owner) / 100), true
	}
	return 0, false
}

// Edges holds one length per side.
type Edges struct {
	Top, Right, Bottom, Left int
}

func (e Edges) horizontal() int { return e.Left + e.Right }
func (e Edges) vertical() int   { return e.Top + e.Bottom }

// Style is the set of layout constraints of a node. The zero value is a
// relative column container with no flexing, stretched children, and
// content-sized dimensions.
type Style struct {
	Direction  Direction
	Wrap       Wrap
	Grow       float64
	Shrink     float64
	Basis      Value
	AlignItems Align
	AlignSelf  Align
	Justify    Justify

	Width, Height       Value
	MinWidth, MinHeight Value
	MaxWidth, MaxHeight Value

	Margin  Edges
	Padding Edges
	Border  Edges

	RowGap    int
	ColumnGap int

	Position PositionType
	Top      Value
	Right    Value
	Bottom   Value
	Left     Value

	Display Display
}

// MeasureMode qualifies the width passed to a MeasureFunc.
type MeasureMode uint8

const (
	// MeasureUndefined means the width is unconstrained.
	MeasureUndefined MeasureMode = iota
	// MeasureExactly means the node will be exactly this wide.
	MeasureExactly
	// MeasureAtMost means the node may be at most this wide.
	MeasureAtMost
)

func (m MeasureMode) String() string {
	switch m {
	case MeasureExactly:
		return "exactly"
	case MeasureAtMost:
		return "at-most"
	default:
		return "undefined"
	}
}

// Size is a width and height in cells.
type Size struct {
	Width, Height int
}

// MeasureFunc reports the content size of a leaf, excluding its padding
// and border, for the given content width constraint.
type MeasureFunc func(width int, mode MeasureMode) Size

// Layout is the computed box of a node. Left and Top are relative to the
// parent's border box.
type Layout struct {
	Left, Top     int
	Width, Height int
}

// Node is one box in a layout tree.
type Node struct {
	Style Style

	parent   *Node
	children []*Node
	measure  MeasureFunc
	layout   Layout

	pass  int
	cache map[constraints]Size
}

// NewNode returns a node with the default style.
func NewNode() *Node {
	return &Node{}
}

func (n *Node) String() string {
	return fmt.Sprintf("flex.Node{%d,%d %dx%d, %d children}",
		n.layout.Left, n.layout.Top, n.layout.Width, n.layout.Height, len(n.children))
}

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the i'th child.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// InsertChild inserts child at index i. A child that already has a parent
// is removed from it first.
func (n *Node) InsertChild(child *Node, i int) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	i = min(max(i, 0), len(n.children))
	n.children = slices.Insert(n.children, i, child)
	child.parent = n
}

// AppendChild adds child as the last child.
func (n *Node) AppendChild(child *Node) {
	n.InsertChild(child, len(n.children))
}

// RemoveChild detaches child. It reports whether child was a child of n.
func (n *Node) RemoveChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// RemoveAllChildren detaches every child.
func (n *Node) RemoveAllChildren() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// SetMeasureFunc sets or, with nil, clears the measure function.
func (n *Node) SetMeasureFunc(f MeasureFunc) {
	n.measure = f
}

// HasMeasureFunc reports whether the node measures its own content.
func (n *Node) HasMeasureFunc() bool {
	return n.measure != nil
}

// Layout returns the computed layout from the last CalculateLayout.
func (n *Node) Layout() Layout {
	return n.layout
}

// ComputedBorder returns the border thickness of the node.
func (n *Node) ComputedBorder() Edges {
	return n.Style.Border
}

// ComputedPadding returns the padding of the node.
func (n *Node) ComputedPadding() Edges {
	return n.Style.Padding
}
