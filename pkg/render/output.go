package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/vito/boxdiff/pkg/ansidiff"
	"github.com/vito/boxdiff/pkg/boxtree"
)

// Transformer rewrites one line of output before it is written.
type Transformer = boxtree.Transformer

type cell struct {
	text string
	sgr  string
	// width is 1 or 2 for a cell holding a character and 0 for the right
	// half of a wide character.
	width int
}

var blank = cell{text: " ", width: 1}

// Clip bounds writes to a rectangle. Bounds are half-open: X1 <= x < X2 and
// Y1 <= y < Y2. An axis that is not clipped has no bounds.
type Clip struct {
	X1, X2 int
	Y1, Y2 int
	ClipX  bool
	ClipY  bool
}

type rect struct {
	x1, x2, y1, y2 int
}

var unbounded = rect{math.MinInt, math.MaxInt, math.MinInt, math.MaxInt}

func (r rect) contains(x, y int) bool {
	return x >= r.x1 && x < r.x2 && y >= r.y1 && y < r.y2
}

// Output is a grid of styled cells that nodes are painted into.
type Output struct {
	width, height int
	rows          [][]cell
	clips         []rect
}

// NewOutput returns a blank buffer of the given size.
func NewOutput(width, height int) *Output {
	width, height = max(width, 0), max(height, 0)
	rows := make([][]cell, height)
	for y := range rows {
		row := make([]cell, width)
		for x := range row {
			row[x] = blank
		}
		rows[y] = row
	}
	return &Output{width: width, height: height, rows: rows}
}

// Width returns the buffer width.
func (o *Output) Width() int { return o.width }

// Height returns the buffer height.
func (o *Output) Height() int { return o.height }

// Clip restricts later writes to c, intersected with the current clip.
func (o *Output) Clip(c Clip) {
	r := o.clip()
	if c.ClipX {
		r.x1, r.x2 = max(r.x1, c.X1), min(r.x2, c.X2)
	}
	if c.ClipY {
		r.y1, r.y2 = max(r.y1, c.Y1), min(r.y2, c.Y2)
	}
	o.clips = append(o.clips, r)
}

// Unclip restores the clip that was active before the last Clip.
func (o *Output) Unclip() {
	if len(o.clips) > 0 {
		o.clips = o.clips[:len(o.clips)-1]
	}
}

func (o *Output) clip() rect {
	if len(o.clips) == 0 {
		return unbounded
	}
	return o.clips[len(o.clips)-1]
}

// Write paints text with its top-left corner at x, y. Each line of text is
// passed through the transformers in order first. Escape sequences in the
// text style the cells they precede; characters falling outside the buffer
// or the active clip are dropped.
func (o *Output) Write(x, y int, text string, transformers ...Transformer) {
	if text == "" {
		return
	}
	clip := o.clip()
	for i, line := range strings.Split(text, "\n") {
		for _, tf := range transformers {
			line = tf(line, i)
		}
		o.writeLine(x, y+i, line, clip)
	}
}

func (o *Output) writeLine(x, y int, line string, clip rect) {
	if y < 0 || y >= o.height {
		return
	}
	row := o.rows[y]
	var sgr string
	col := x
	last := -1
	for _, tok := range ansidiff.Tokenize(line) {
		if tok.ANSI {
			if tok.Value == ansidiff.Reset {
				sgr = ""
			} else {
				sgr += tok.Value
			}
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok.Value)
		w := runewidth.RuneWidth(r)
		if w == 0 {
			// combining marks join the character before them
			if last >= 0 {
				row[last].text += tok.Value
			}
			continue
		}
		if col >= 0 && col+w <= o.width && clip.contains(col, y) && clip.contains(col+w-1, y) {
			o.set(row, col, cell{text: tok.Value, sgr: sgr, width: w})
			last = col
		} else {
			last = -1
		}
		col += w
	}
}

func (o *Output) set(row []cell, x int, c cell) {
	for i := x; i < x+c.width; i++ {
		switch row[i].width {
		case 0:
			// overwriting the right half of a wide character
			if i > 0 {
				row[i-1] = blank
			}
		case 2:
			if i+1 < len(row) {
				row[i+1] = blank
			}
		}
	}
	row[x] = c
	if c.width == 2 {
		row[x+1] = cell{sgr: c.sgr}
	}
}

// Lines returns one string per row. Styled runs are opened with their
// escape codes and closed with a reset; rows keep their trailing blanks.
func (o *Output) Lines() []string {
	lines := make([]string, o.height)
	var b strings.Builder
	for y, row := range o.rows {
		b.Reset()
		cur := ""
		for _, c := range row {
			if c.width == 0 {
				continue
			}
			if c.sgr != cur {
				if cur != "" {
					b.WriteString(ansidiff.Reset)
				}
				b.WriteString(c.sgr)
				cur = c.sgr
			}
			b.WriteString(c.text)
		}
		if cur != "" {
			b.WriteString(ansidiff.Reset)
		}
		lines[y] = b.String()
	}
	return lines
}

// String joins Lines with newlines.
func (o *Output) String() string {
	return strings.Join(o.Lines(), "\n")
}
