package style

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/iancoleman/strcase"
)

// Side names one edge of a box.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

var sideNames = [...]string{"top", "right", "bottom", "left"}

func (s Side) String() string {
	return sideNames[s]
}

// HideBorder turns off individual edges of a border. The zero value shows
// every edge.
type HideBorder struct {
	Top, Right, Bottom, Left bool
}

// EdgeStyle overrides the border color and dimming of one edge.
type EdgeStyle struct {
	Color  color.Color
	Dim    bool
	DimSet bool
}

// Border describes a box border. A border with no Name is not drawn and
// takes no space.
type Border struct {
	Name   string
	Glyphs lipgloss.Border
	Hide   HideBorder
	Color  color.Color
	Dim    bool
	Edges  [4]EdgeStyle
}

// borderSets are the named glyph sets. The mixed sets have no lipgloss
// equivalent.
var borderSets = map[string]lipgloss.Border{
	"single":  lipgloss.NormalBorder(),
	"double":  lipgloss.DoubleBorder(),
	"round":   lipgloss.RoundedBorder(),
	"bold":    lipgloss.ThickBorder(),
	"classic": lipgloss.ASCIIBorder(),
	"hidden":  lipgloss.HiddenBorder(),
	"single-double": {
		TopLeft: "╓", Top: "─", TopRight: "╖", Right: "║",
		BottomRight: "╜", Bottom: "─", BottomLeft: "╙", Left: "║",
	},
	"double-single": {
		TopLeft: "╒", Top: "═", TopRight: "╕", Right: "│",
		BottomRight: "╛", Bottom: "═", BottomLeft: "╘", Left: "│",
	},
}

// BorderSet returns the glyphs for a named border style.
func BorderSet(name string) (lipgloss.Border, bool) {
	b, ok := borderSets[strcase.ToKebab(name)]
	return b, ok
}

// Visible reports whether the given edge is drawn.
func (b Border) Visible(side Side) bool {
	if b.Name == "" {
		return false
	}
	switch side {
	case Top:
		return !b.Hide.Top
	case Right:
		return !b.Hide.Right
	case Bottom:
		return !b.Hide.Bottom
	default:
		return !b.Hide.Left
	}
}

// Widths returns the thickness of each edge: 1 when drawn, else 0.
func (b Border) Widths() Edges {
	w := func(s Side) int {
		if b.Visible(s) {
			return 1
		}
		return 0
	}
	return Edges{Top: w(Top), Right: w(Right), Bottom: w(Bottom), Left: w(Left)}
}

// EdgeColor returns the color of an edge, falling back to the border color.
func (b Border) EdgeColor(side Side) color.Color {
	if c := b.Edges[side].Color; c != nil {
		return c
	}
	return b.Color
}

// EdgeDim reports whether an edge is dimmed, falling back to the border's
// dim flag.
func (b Border) EdgeDim(side Side) bool {
	if e := b.Edges[side]; e.DimSet {
		return e.Dim
	}
	return b.Dim
}

// set applies a "border*" attribute.
func (b *Border) set(key string, v any) bool {
	switch key {
	case "border-style", "border":
		return b.setStyle(v)
	case "border-color":
		return setColor(&b.Color, v)
	case "border-dim-color", "border-dim":
		return setBool(&b.Dim, v)
	}

	rest, ok := strings.CutPrefix(key, "border-")
	if !ok {
		return false
	}
	sideName, prop, _ := strings.Cut(rest, "-")
	side := -1
	for i, name := range sideNames {
		if name == sideName {
			side = i
		}
	}
	if side < 0 {
		return false
	}

	switch prop {
	case "":
		var show bool
		if !setBool(&show, v) {
			return false
		}
		switch Side(side) {
		case Top:
			b.Hide.Top = !show
		case Right:
			b.Hide.Right = !show
		case Bottom:
			b.Hide.Bottom = !show
		case Left:
			b.Hide.Left = !show
		}
		return true
	case "color":
		return setColor(&b.Edges[side].Color, v)
	case "dim-color", "dim":
		if !setBool(&b.Edges[side].Dim, v) {
			return false
		}
		b.Edges[side].DimSet = true
		return true
	}
	return false
}

// setStyle accepts a named style, false/"none" to remove the border, or a
// table of custom glyphs.
func (b *Border) setStyle(v any) bool {
	switch x := v.(type) {
	case bool:
		if x {
			b.Name, b.Glyphs = "single", borderSets["single"]
		} else {
			b.Name, b.Glyphs = "", lipgloss.Border{}
		}
		return true
	case string:
		if x == "" || x == "none" {
			b.Name, b.Glyphs = "", lipgloss.Border{}
			return true
		}
		glyphs, ok := BorderSet(x)
		if !ok {
			return false
		}
		b.Name, b.Glyphs = strcase.ToKebab(x), glyphs
		return true
	case map[string]any:
		glyphs := lipgloss.Border{}
		for k, g := range x {
			str, ok := g.(string)
			if !ok {
				return false
			}
			switch strcase.ToKebab(k) {
			case "top-left":
				glyphs.TopLeft = str
			case "top":
				glyphs.Top = str
			case "top-right":
				glyphs.TopRight = str
			case "right":
				glyphs.Right = str
			case "bottom-right":
				glyphs.BottomRight = str
			case "bottom":
				glyphs.Bottom = str
			case "bottom-left":
				glyphs.BottomLeft = str
			case "left":
				glyphs.Left = str
			default:
				return false
			}
		}
		b.Name, b.Glyphs = "custom", glyphs
		return true
	}
	return false
}
