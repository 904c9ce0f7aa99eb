package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/layout"
	"github.com/vito/boxdiff/pkg/style"
)

func pad(s string, w int) string {
	return s + strings.Repeat(" ", w-ansi.StringWidth(s))
}

func snapshot(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(ansi.Strip(line))
		b.WriteString("\n")
	}
	return b.String()
}

// builder keeps tree construction in tests terse.
type builder struct {
	t    *testing.T
	tree *boxtree.Tree
}

func newBuilder(t *testing.T) *builder {
	return &builder{t: t, tree: boxtree.New()}
}

func (b *builder) box(attrs style.Attributes, children ...boxtree.Handle) boxtree.Handle {
	h := b.tree.NewContainer(style.Resolve(attrs))
	for _, c := range children {
		require.NoError(b.t, b.tree.AppendChild(h, c))
	}
	return h
}

func (b *builder) text(s string, attrs style.Attributes) boxtree.Handle {
	return b.tree.NewText(s, style.Resolve(attrs))
}

func (b *builder) render(root boxtree.Handle, width int) []string {
	b.t.Helper()
	require.NoError(b.t, layout.Calculate(b.tree, root, width, layout.Undefined))
	r, ok := layout.Rect(b.tree, root)
	require.True(b.t, ok)
	out := NewOutput(width, r.Height)
	RenderNode(b.tree, root, out, Options{})
	return out.Lines()
}

func TestRenderDashboard(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil,
		b.box(style.Attributes{"flexDirection": "row", "justifyContent": "space-between"},
			b.text("boxdiff", style.Attributes{"bold": true}),
			b.text("12:00", style.Attributes{"color": "gray"}),
		),
		b.box(style.Attributes{"borderStyle": "single", "flexDirection": "row"},
			b.box(style.Attributes{"flexGrow": 1}, b.text("left", nil)),
			b.box(style.Attributes{"flexGrow": 1}, b.text("right", nil)),
		),
		b.text("q to quit", style.Attributes{"paddingLeft": 2}),
	)

	golden.Assert(t, snapshot(b.render(root, 20)), "dashboard.golden")
}

func TestRenderBorderedText(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil,
		b.box(style.Attributes{"borderStyle": "round", "paddingX": 1},
			b.text("hello world", nil),
		),
	)
	golden.Assert(t, snapshot(b.render(root, 12)), "bordered_text.golden")
}

func TestRenderBorderEdges(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil,
		b.box(style.Attributes{"borderStyle": "single", "borderTop": false, "width": 4},
			b.text("hi", nil),
		),
	)
	assert.Equal(t, []string{"│hi│", "└──┘"}, b.render(root, 4))

	b = newBuilder(t)
	root = b.box(nil,
		b.box(style.Attributes{"borderStyle": "single", "borderLeft": false, "width": 4},
			b.text("hi", nil),
		),
	)
	assert.Equal(t, []string{"───┐", "hi │", "───┘"}, b.render(root, 4))
}

func TestRenderBorderColors(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil,
		b.box(style.Attributes{
			"borderStyle":          "single",
			"borderColor":          "green",
			"borderLeftColor":      "red",
			"borderBottomDimColor": true,
			"width":                4,
			"height":               3,
		}),
	)
	lines := b.render(root, 4)
	require.Len(t, lines, 3)
	assert.Equal(t, "\x1b[32m┌──┐\x1b[0m", lines[0])
	assert.Equal(t, "\x1b[31m│\x1b[0m  \x1b[32m│\x1b[0m", lines[1])
	assert.Equal(t, "\x1b[2;32m└──┘\x1b[0m", lines[2])
}

func TestRenderBackground(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil,
		b.box(style.Attributes{"backgroundColor": "blue", "width": 4},
			b.text("hi", style.Attributes{"color": "red"}),
		),
	)
	lines := b.render(root, 6)
	require.Len(t, lines, 1)
	assert.Equal(t, "\x1b[31;44mhi\x1b[0m\x1b[44m  \x1b[0m  ", lines[0])

	t.Run("inside a border", func(t *testing.T) {
		b := newBuilder(t)
		root := b.box(nil,
			b.box(style.Attributes{"backgroundColor": "blue", "borderStyle": "classic", "width": 4, "height": 3}),
		)
		lines := b.render(root, 4)
		assert.Equal(t, []string{"+--+", "|\x1b[44m  \x1b[0m|", "+--+"}, lines)
	})
}

func TestRenderOverflowHidden(t *testing.T) {
	for _, example := range []struct {
		name  string
		attrs style.Attributes
		line  string
	}{
		{"visible", style.Attributes{"width": 5}, "abcdefghij"},
		{"hidden", style.Attributes{"width": 5, "overflow": "hidden"}, "abcde     "},
		{"hidden y only", style.Attributes{"width": 5, "overflowY": "hidden"}, "abcdefghij"},
	} {
		t.Run(example.name, func(t *testing.T) {
			b := newBuilder(t)
			root := b.box(nil, b.box(example.attrs, b.text("abcdefghij", nil)))
			assert.Equal(t, []string{example.line}, b.render(root, 10))
		})
	}
}

func TestRenderTruncation(t *testing.T) {
	b := newBuilder(t)
	root := b.box(style.Attributes{"width": 8},
		b.text("hello world", style.Attributes{"wrap": "truncate-end"}),
		b.text("hello world", style.Attributes{"wrap": "truncate-middle"}),
		b.text("hello world", nil),
	)
	assert.Equal(t, []string{
		"hello w…",
		"hell…rld",
		"hello   ",
		"world   ",
	}, b.render(root, 8))
}

func TestRenderTransformers(t *testing.T) {
	b := newBuilder(t)
	leaf := b.text("hi\nyo", nil)
	root := b.box(nil, leaf)
	require.NoError(t, b.tree.SetTransform(root, func(line string, _ int) string {
		return strings.ToUpper(line)
	}))
	require.NoError(t, b.tree.SetTransform(leaf, func(line string, i int) string {
		return string(rune('1'+i)) + "> " + line
	}))

	assert.Equal(t, []string{"1> HI", "2> YO"}, b.render(root, 5))
}

func TestRenderSkipsHidden(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil,
		b.text("gone", style.Attributes{"display": "none"}),
		b.text("here", nil),
	)
	assert.Equal(t, []string{"here"}, b.render(root, 4))
}

func TestOutputClipsIntersect(t *testing.T) {
	out := NewOutput(10, 3)
	out.Clip(Clip{X1: 2, X2: 8, ClipX: true})
	out.Clip(Clip{X1: 4, X2: 10, Y1: 0, Y2: 1, ClipX: true, ClipY: true})
	out.Write(0, 0, "0123456789\n0123456789")
	out.Unclip()
	out.Write(0, 2, "0123456789")
	out.Unclip()

	assert.Equal(t, []string{
		"    4567  ",
		"          ",
		"  234567  ",
	}, out.Lines())
}

func TestOutputDropsOutOfBounds(t *testing.T) {
	out := NewOutput(4, 1)
	out.Write(-2, 0, "abcdef")
	out.Write(0, 1, "zzzz")
	out.Write(0, -1, "zzzz")
	assert.Equal(t, "cdef", out.String())
}

func TestOutputWideRunes(t *testing.T) {
	out := NewOutput(5, 1)
	out.Write(0, 0, "日本")
	assert.Equal(t, "日本 ", out.String())

	out.Write(1, 0, "x")
	assert.Equal(t, " x本 ", out.String())

	out.Write(4, 0, "語")
	assert.Equal(t, " x本 ", out.String(), "a wide rune that does not fit is dropped")
}

func TestOutputStyledRuns(t *testing.T) {
	out := NewOutput(6, 2)
	out.Write(0, 0, "\x1b[31mab\x1b[0mcd\x1b[1mef")
	assert.Equal(t, []string{
		"\x1b[31mab\x1b[0mcd\x1b[1mef\x1b[0m",
		"      ",
	}, out.Lines())
}

func TestExtractLinesStatic(t *testing.T) {
	b := newBuilder(t)
	log := b.box(style.Attributes{"static": true},
		b.text("one", nil),
		b.text("two", nil),
	)
	status := b.text("status", nil)
	root := b.box(nil, log, status)

	var cache StaticCache
	frame, err := ExtractLines(b.tree, root, &cache, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{pad("one", 10), pad("two", 10)}, frame.Static)
	assert.Equal(t, []string{pad("status", 10)}, frame.Dynamic)
	assert.Equal(t, 2, frame.NewStatic)

	three := b.text("three", nil)
	require.NoError(t, b.tree.AppendChild(log, three))
	require.NoError(t, b.tree.SetText(status, "busy"))

	frame, err = ExtractLines(b.tree, root, &cache, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{pad("one", 10), pad("two", 10), pad("three", 10)}, frame.Static)
	assert.Equal(t, []string{pad("busy", 10)}, frame.Dynamic)
	assert.Equal(t, 1, frame.NewStatic)

	frame, err = ExtractLines(b.tree, root, &cache, 10, 5)
	require.NoError(t, err)
	assert.Len(t, frame.Static, 3)
	assert.Zero(t, frame.NewStatic)
	assert.Equal(t, append(frame.Static, pad("busy", 10)), frame.Lines())

	for _, h := range b.tree.Descendants(log)[1:] {
		assert.True(t, b.tree.StaticRendered(h), "%s", h)
		_, ok := layout.Rect(b.tree, h)
		assert.False(t, ok, "%s keeps no layout", h)
	}
}

func TestExtractLinesStaticBelowHeader(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil,
		b.text("header", nil),
		b.box(style.Attributes{"static": true}, b.text("logged", nil)),
	)
	var cache StaticCache
	frame, err := ExtractLines(b.tree, root, &cache, 8, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{pad("logged", 8)}, frame.Static)
	assert.Equal(t, []string{pad("header", 8)}, frame.Dynamic)
}

func TestExtractLinesClampsToHeight(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil, b.text("a\nb\nc", nil))
	var cache StaticCache
	frame, err := ExtractLines(b.tree, root, &cache, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, frame.Dynamic)
}

func TestExtractLinesUnbounded(t *testing.T) {
	b := newBuilder(t)
	root := b.box(nil, b.text("a\nb\nc", nil))
	var cache StaticCache
	frame, err := ExtractLines(b.tree, root, &cache, 1, layout.Undefined)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, frame.Dynamic)
}

func TestStaticCacheReset(t *testing.T) {
	var cache StaticCache
	cache.Append("a", "b")
	assert.Equal(t, 2, cache.Len())
	cache.Reset()
	assert.Zero(t, cache.Len())
	assert.Empty(t, cache.Lines())
}
