package render

import (
	"slices"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/layout"
)

// StaticCache holds the lines produced by static nodes. It only grows; the
// lines are replayed at the top of every frame until Reset.
type StaticCache struct {
	lines []string
}

// Lines returns the cached lines. The slice must not be modified.
func (c *StaticCache) Lines() []string {
	return c.lines
}

// Len returns the number of cached lines.
func (c *StaticCache) Len() int {
	return len(c.lines)
}

// Append adds freshly rendered static lines.
func (c *StaticCache) Append(lines ...string) {
	c.lines = append(c.lines, lines...)
}

// Reset empties the cache.
func (c *StaticCache) Reset() {
	c.lines = nil
}

// Frame is the output of one render pass.
type Frame struct {
	// Static holds every cached static line, oldest first.
	Static []string
	// Dynamic holds the lines of the live tree.
	Dynamic []string
	// NewStatic counts the static lines rendered by this pass. The rest
	// were replayed from the cache.
	NewStatic int
}

// Lines returns the static lines followed by the dynamic lines.
func (f Frame) Lines() []string {
	return slices.Concat(f.Static, f.Dynamic)
}

// ExtractLines lays out and paints one frame of the tree rooted at root.
//
// Static nodes whose children have not been rendered yet are painted on
// their own, their lines are appended to cache, and their children are
// frozen so later passes skip them. The live tree is then laid out again
// and painted, at most height rows tall. A negative height, such as
// layout.Undefined, leaves the frame as tall as its content.
func ExtractLines(t *boxtree.Tree, root boxtree.Handle, cache *StaticCache, width, height int) (Frame, error) {
	if err := layout.Calculate(t, root, width, layout.Undefined); err != nil {
		return Frame{}, err
	}

	var fresh int
	for _, s := range staticNodes(t, root) {
		if !hasFreshChildren(t, s) {
			continue
		}
		r, ok := layout.Rect(t, s)
		if !ok {
			continue
		}
		out := NewOutput(width, r.Height)
		RenderNode(t, s, out, Options{OffsetX: -r.Left, OffsetY: -r.Top})
		lines := out.Lines()
		cache.Append(lines...)
		fresh += len(lines)

		for c := range t.Children(s) {
			if err := t.MarkStaticRendered(c); err != nil {
				return Frame{}, err
			}
		}
	}
	if fresh > 0 {
		if err := layout.Calculate(t, root, width, layout.Undefined); err != nil {
			return Frame{}, err
		}
	}

	r, _ := layout.Rect(t, root)
	rows := max(0, r.Top+r.Height)
	if height >= 0 {
		rows = min(rows, height)
	}
	out := NewOutput(width, rows)
	RenderNode(t, root, out, Options{SkipStatic: true})

	return Frame{
		Static:    slices.Clone(cache.Lines()),
		Dynamic:   out.Lines(),
		NewStatic: fresh,
	}, nil
}

// staticNodes returns the outermost static nodes under root in document
// order.
func staticNodes(t *boxtree.Tree, root boxtree.Handle) []boxtree.Handle {
	var found []boxtree.Handle
	var visit func(h boxtree.Handle)
	visit = func(h boxtree.Handle) {
		if t.StaticRendered(h) {
			return
		}
		if t.IsStatic(h) {
			found = append(found, h)
			return
		}
		for c := range t.Children(h) {
			visit(c)
		}
	}
	visit(root)
	return found
}

func hasFreshChildren(t *boxtree.Tree, h boxtree.Handle) bool {
	for c := range t.Children(h) {
		if !t.StaticRendered(c) {
			return true
		}
	}
	return false
}
