// Package style resolves declared node attributes into a typed style record.
//
// Attributes arrive as a loosely typed bag (the shape a template or a TOML
// document produces). Resolve normalizes attribute names, converts values,
// and drops anything it does not understand. Resolution never fails: a bad
// value is logged at debug level and ignored.
package style

import (
	"cmp"
	"image/color"
	"log/slog"
	"slices"
	"strings"

	"github.com/iancoleman/strcase"
)

// Attributes is a bag of declared attributes, keyed by name. Names may be
// kebab-case, camelCase or snake_case.
type Attributes map[string]any

type FlexDirection string

const (
	Column        FlexDirection = "column"
	Row           FlexDirection = "row"
	ColumnReverse FlexDirection = "column-reverse"
	RowReverse    FlexDirection = "row-reverse"
)

type FlexWrap string

const (
	NoWrap      FlexWrap = "nowrap"
	Wrap        FlexWrap = "wrap"
	WrapReverse FlexWrap = "wrap-reverse"
)

type Align string

const (
	AlignAuto    Align = "auto"
	AlignStart   Align = "flex-start"
	AlignCenter  Align = "center"
	AlignEnd     Align = "flex-end"
	AlignStretch Align = "stretch"
)

type Justify string

const (
	JustifyStart        Justify = "flex-start"
	JustifyCenter       Justify = "center"
	JustifyEnd          Justify = "flex-end"
	JustifySpaceBetween Justify = "space-between"
	JustifySpaceAround  Justify = "space-around"
	JustifySpaceEvenly  Justify = "space-evenly"
)

type Position string

const (
	Relative Position = "relative"
	Absolute Position = "absolute"
)

type Display string

const (
	DisplayFlex Display = "flex"
	DisplayNone Display = "none"
)

type Overflow string

const (
	OverflowVisible Overflow = "visible"
	OverflowHidden  Overflow = "hidden"
)

// TextWrap controls what happens to text wider than its box.
type TextWrap string

const (
	WrapText       TextWrap = "wrap"
	Truncate       TextWrap = "truncate"
	TruncateEnd    TextWrap = "truncate-end"
	TruncateMiddle TextWrap = "truncate-middle"
	TruncateStart  TextWrap = "truncate-start"
)

// Unit is the unit of a Dimension.
type Unit uint8

const (
	// UnitUndefined means the dimension was not set.
	UnitUndefined Unit = iota
	UnitPoint
	UnitPercent
	UnitAuto
)

// Dimension is a length in terminal cells, a percentage of the parent, or
// auto. The zero value is undefined.
type Dimension struct {
	Value float64
	Unit  Unit
}

// Points returns a dimension of n cells.
func Points(n int) Dimension {
	return Dimension{Value: float64(n), Unit: UnitPoint}
}

// Percent returns a dimension of p percent of the parent.
func Percent(p float64) Dimension {
	return Dimension{Value: p, Unit: UnitPercent}
}

// Auto is the auto dimension.
var Auto = Dimension{Unit: UnitAuto}

// IsSet reports whether the dimension was declared.
func (d Dimension) IsSet() bool {
	return d.Unit != UnitUndefined
}

// Edges holds one integer per box side.
type Edges struct {
	Top, Right, Bottom, Left int
}

// Inset holds the offsets of a positioned box.
type Inset struct {
	Top, Right, Bottom, Left Dimension
}

// Text is the text decoration of a node. Colors are nil when unset.
type Text struct {
	Color         color.Color
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Inverse       bool
	Dim           bool
	Wrap          TextWrap
}

// Style is the normalized style record of a node. The zero value is the
// default style.
type Style struct {
	FlexDirection  FlexDirection
	FlexWrap       FlexWrap
	FlexGrow       float64
	FlexShrink     float64
	FlexBasis      Dimension
	AlignItems     Align
	AlignSelf      Align
	JustifyContent Justify

	Width, Height       Dimension
	MinWidth, MinHeight Dimension
	MaxWidth, MaxHeight Dimension

	Margin    Edges
	Padding   Edges
	RowGap    int
	ColumnGap int

	Position Position
	Inset    Inset
	Display  Display

	OverflowX Overflow
	OverflowY Overflow

	Border     Border
	Background color.Color
	Text       Text

	Static bool
}

// Resolve builds a style from attributes.
func Resolve(attrs Attributes) Style {
	return Style{}.Apply(attrs)
}

// Apply returns a copy of s with attrs applied on top. Shorthands are
// applied before axis attributes, and axis attributes before single-edge
// attributes, so that "margin-top" wins over "margin" regardless of map
// order.
func (s Style) Apply(attrs Attributes) Style {
	type entry struct {
		key   string
		value any
	}
	entries := make([]entry, 0, len(attrs))
	for k, v := range attrs {
		entries = append(entries, entry{strcase.ToKebab(k), v})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Or(
			cmp.Compare(precedence(a.key), precedence(b.key)),
			cmp.Compare(a.key, b.key),
		)
	})
	for _, e := range entries {
		if !s.set(e.key, e.value) {
			slog.Debug("ignoring style attribute", "attribute", e.key, "value", e.value)
		}
	}
	return s
}

var shorthands = map[string]bool{
	"margin":           true,
	"padding":          true,
	"gap":              true,
	"overflow":         true,
	"border-color":     true,
	"border-dim-color": true,
}

func precedence(key string) int {
	switch {
	case shorthands[key]:
		return 0
	case strings.HasSuffix(key, "-x"), strings.HasSuffix(key, "-y"):
		return 1
	default:
		return 2
	}
}

// set applies one normalized attribute. It returns false if the attribute
// or its value was not understood.
func (s *Style) set(key string, v any) bool {
	switch key {
	case "flex-direction":
		return setEnum(&s.FlexDirection, v, Column, Row, ColumnReverse, RowReverse)
	case "flex-wrap":
		return setEnum(&s.FlexWrap, v, NoWrap, Wrap, WrapReverse)
	case "flex-grow":
		return setFloat(&s.FlexGrow, v)
	case "flex-shrink":
		return setFloat(&s.FlexShrink, v)
	case "flex-basis":
		return setDimension(&s.FlexBasis, v)
	case "align-items":
		return setAlign(&s.AlignItems, v)
	case "align-self":
		return setAlign(&s.AlignSelf, v)
	case "justify-content":
		return setEnum(&s.JustifyContent, flexAlias(v),
			JustifyStart, JustifyCenter, JustifyEnd,
			JustifySpaceBetween, JustifySpaceAround, JustifySpaceEvenly)

	case "width":
		return setDimension(&s.Width, v)
	case "height":
		return setDimension(&s.Height, v)
	case "min-width":
		return setDimension(&s.MinWidth, v)
	case "min-height":
		return setDimension(&s.MinHeight, v)
	case "max-width":
		return setDimension(&s.MaxWidth, v)
	case "max-height":
		return setDimension(&s.MaxHeight, v)

	case "gap":
		n, ok := toInt(v)
		if ok {
			s.RowGap, s.ColumnGap = n, n
		}
		return ok
	case "row-gap":
		return setInt(&s.RowGap, v)
	case "column-gap":
		return setInt(&s.ColumnGap, v)

	case "position":
		return setEnum(&s.Position, v, Relative, Absolute)
	case "top":
		return setDimension(&s.Inset.Top, v)
	case "right":
		return setDimension(&s.Inset.Right, v)
	case "bottom":
		return setDimension(&s.Inset.Bottom, v)
	case "left":
		return setDimension(&s.Inset.Left, v)
	case "display":
		return setEnum(&s.Display, v, DisplayFlex, DisplayNone)

	case "overflow":
		var o Overflow
		if !setEnum(&o, v, OverflowVisible, OverflowHidden) {
			return false
		}
		s.OverflowX, s.OverflowY = o, o
		return true
	case "overflow-x":
		return setEnum(&s.OverflowX, v, OverflowVisible, OverflowHidden)
	case "overflow-y":
		return setEnum(&s.OverflowY, v, OverflowVisible, OverflowHidden)

	case "background-color", "background":
		return setColor(&s.Background, v)
	case "color":
		return setColor(&s.Text.Color, v)
	case "bold":
		return setBool(&s.Text.Bold, v)
	case "italic":
		return setBool(&s.Text.Italic, v)
	case "underline":
		return setBool(&s.Text.Underline, v)
	case "strikethrough":
		return setBool(&s.Text.Strikethrough, v)
	case "inverse":
		return setBool(&s.Text.Inverse, v)
	case "dim", "dim-color":
		return setBool(&s.Text.Dim, v)
	case "wrap", "text-wrap":
		return setEnum(&s.Text.Wrap, v, WrapText, Truncate, TruncateEnd, TruncateMiddle, TruncateStart)

	case "static":
		return setBool(&s.Static, v)
	}

	if edges, side, ok := spacingKey(key); ok {
		target := &s.Margin
		if edges == "padding" {
			target = &s.Padding
		}
		n, ok := toInt(v)
		if !ok {
			return false
		}
		target.set(side, n)
		return true
	}

	if strings.HasPrefix(key, "border") {
		return s.Border.set(key, v)
	}

	return false
}

// spacingKey splits "margin", "margin-x", "padding-top" and so on into the
// property and the side ("", "x", "y", "top", ...).
func spacingKey(key string) (string, string, bool) {
	for _, prop := range []string{"margin", "padding"} {
		if key == prop {
			return prop, "", true
		}
		side, ok := strings.CutPrefix(key, prop+"-")
		if !ok {
			continue
		}
		switch side {
		case "x", "y", "top", "right", "bottom", "left":
			return prop, side, true
		}
	}
	return "", "", false
}

func (e *Edges) set(side string, n int) {
	switch side {
	case "":
		*e = Edges{n, n, n, n}
	case "x":
		e.Left, e.Right = n, n
	case "y":
		e.Top, e.Bottom = n, n
	case "top":
		e.Top = n
	case "right":
		e.Right = n
	case "bottom":
		e.Bottom = n
	case "left":
		e.Left = n
	}
}

// ContentInset returns the cells between a box's outer edge and its content
// on each side: border plus padding.
func (s Style) ContentInset() Edges {
	b := s.Border.Widths()
	return Edges{
		Top:    b.Top + s.Padding.Top,
		Right:  b.Right + s.Padding.Right,
		Bottom: b.Bottom + s.Padding.Bottom,
		Left:   b.Left + s.Padding.Left,
	}
}

// Hidden reports whether the node is not displayed.
func (s Style) Hidden() bool {
	return s.Display == DisplayNone
}

// ClipsX reports whether horizontal overflow is hidden.
func (s Style) ClipsX() bool {
	return s.OverflowX == OverflowHidden
}

// ClipsY reports whether vertical overflow is hidden.
func (s Style) ClipsY() bool {
	return s.OverflowY == OverflowHidden
}

// TextWrap returns the wrap mode, defaulting to wrapping.
func (s Style) TextWrap() TextWrap {
	if s.Text.Wrap == "" {
		return WrapText
	}
	return s.Text.Wrap
}
