package boxtree

import (
	"slices"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/boxdiff/pkg/flex"
	"github.com/vito/boxdiff/pkg/style"
)

func children(t *Tree, h Handle) []Handle {
	return slices.Collect(t.Children(h))
}

func TestAppendAndInsert(t *testing.T) {
	tree := New()
	root := tree.NewContainer(style.Style{})
	a := tree.NewText("a", style.Style{})
	b := tree.NewText("b", style.Style{})
	c := tree.NewText("c", style.Style{})

	require.NoError(t, tree.AppendChild(root, a))
	require.NoError(t, tree.AppendChild(root, c))
	require.NoError(t, tree.InsertBefore(root, b, c))

	assert.Equal(t, []Handle{a, b, c}, children(tree, root))
	assert.Equal(t, 3, tree.ChildCount(root))
	assert.Equal(t, root, tree.Parent(b))
	assert.Equal(t, a, tree.FirstChild(root))
	assert.Equal(t, c, tree.LastChild(root))
	assert.Equal(t, c, tree.NextSibling(b))
	assert.Equal(t, a, tree.PrevSibling(b))

	t.Run("appending an existing child is a no-op", func(t *testing.T) {
		require.NoError(t, tree.AppendChild(root, a))
		assert.Equal(t, []Handle{a, b, c}, children(tree, root))
	})

	t.Run("inserting an existing child moves it", func(t *testing.T) {
		require.NoError(t, tree.InsertBefore(root, c, a))
		assert.Equal(t, []Handle{c, a, b}, children(tree, root))
		assert.Equal(t, 3, tree.ChildCount(root))
	})
}

func TestStructureErrors(t *testing.T) {
	tree := New()
	root := tree.NewContainer(style.Style{})
	other := tree.NewContainer(style.Style{})
	child := tree.NewContainer(style.Style{})
	leaf := tree.NewText("x", style.Style{})
	require.NoError(t, tree.AppendChild(root, child))
	require.NoError(t, tree.AppendChild(root, other))

	for _, example := range []struct {
		name string
		err  error
		msg  string
	}{
		{
			"different parent",
			tree.AppendChild(other, child),
			"already has parent",
		},
		{
			"reference elsewhere",
			tree.InsertBefore(other, leaf, child),
			"reference " + child.String() + " has a different parent",
		},
		{
			"into itself",
			tree.AppendChild(child, child),
			"into itself",
		},
		{
			"into a descendant",
			tree.AppendChild(child, root),
			"ancestor",
		},
		{
			"into text",
			tree.AppendChild(leaf, tree.NewText("y", style.Style{})),
			"into text",
		},
		{
			"remove orphan",
			tree.RemoveChild(root, leaf),
			"has no parent",
		},
		{
			"remove from wrong parent",
			tree.RemoveChild(other, child),
			"its parent is " + root.String(),
		},
		{
			"text on container",
			tree.SetText(root, "nope"),
			"can't set text",
		},
	} {
		t.Run(example.name, func(t *testing.T) {
			require.Error(t, example.err)
			assert.True(t, errors.Is(example.err, ErrStructure), "%v", example.err)
			assert.Contains(t, example.err.Error(), example.msg)
		})
	}
}

func TestRemoveChild(t *testing.T) {
	tree := New()
	root := tree.NewContainer(style.Style{})
	a := tree.NewText("a", style.Style{})
	b := tree.NewText("b", style.Style{})
	c := tree.NewText("c", style.Style{})
	for _, h := range []Handle{a, b, c} {
		require.NoError(t, tree.AppendChild(root, h))
	}

	require.NoError(t, tree.RemoveChild(root, b))
	assert.Equal(t, []Handle{a, c}, children(tree, root))
	assert.True(t, tree.Parent(b).IsZero())
	assert.True(t, tree.Valid(b))

	require.NoError(t, tree.RemoveChildren(root))
	assert.Empty(t, children(tree, root))
	assert.Zero(t, tree.ChildCount(root))
}

func TestFreeMakesHandlesStale(t *testing.T) {
	tree := New()
	root := tree.NewContainer(style.Style{})
	box := tree.NewContainer(style.Style{})
	leaf := tree.NewText("hi", style.Style{})
	require.NoError(t, tree.AppendChild(root, box))
	require.NoError(t, tree.AppendChild(box, leaf))
	require.Equal(t, 3, tree.Len())

	require.NoError(t, tree.Free(box))
	assert.Equal(t, 1, tree.Len())
	assert.False(t, tree.Valid(box))
	assert.False(t, tree.Valid(leaf))
	assert.Empty(t, children(tree, root))

	err := tree.SetText(leaf, "again")
	assert.True(t, errors.Is(err, ErrStaleHandle))

	reused := tree.NewText("new", style.Style{})
	assert.True(t, tree.Valid(reused))
	assert.False(t, tree.Valid(leaf), "old handle must not see the reused slot")
}

func TestWalk(t *testing.T) {
	tree := New()
	root := tree.NewContainer(style.Style{})
	a := tree.NewContainer(style.Style{})
	a1 := tree.NewText("a1", style.Style{})
	a2 := tree.NewText("a2", style.Style{})
	b := tree.NewContainer(style.Style{})
	b1 := tree.NewText("b1", style.Style{})
	require.NoError(t, tree.AppendChild(root, a))
	require.NoError(t, tree.AppendChild(a, a1))
	require.NoError(t, tree.AppendChild(a, a2))
	require.NoError(t, tree.AppendChild(root, b))
	require.NoError(t, tree.AppendChild(b, b1))

	want := []Handle{root, a, a1, a2, b, b1}
	assert.Equal(t, want, tree.Descendants(root))

	t.Run("restartable", func(t *testing.T) {
		seq := tree.Walk(root)
		assert.Equal(t, want, slices.Collect(seq))
		assert.Equal(t, want, slices.Collect(seq))
	})

	t.Run("subtree", func(t *testing.T) {
		assert.Equal(t, []Handle{a, a1, a2}, tree.Descendants(a))
	})

	t.Run("early stop", func(t *testing.T) {
		var seen []Handle
		for h := range tree.Walk(root) {
			seen = append(seen, h)
			if h == a1 {
				break
			}
		}
		assert.Equal(t, []Handle{root, a, a1}, seen)
	})
}

func TestApplyStyle(t *testing.T) {
	tree := New()
	h := tree.NewContainer(style.Resolve(style.Attributes{"width": 4}))
	require.NoError(t, tree.ApplyStyle(h, style.Attributes{"static": true, "bold": true}))
	s := tree.Style(h)
	assert.Equal(t, style.Points(4), s.Width)
	assert.True(t, s.Text.Bold)
	assert.True(t, tree.IsStatic(h))
}

func TestStaticRenderedDetachesLayout(t *testing.T) {
	tree := New()
	root := tree.NewContainer(style.Style{})
	log := tree.NewContainer(style.Style{Static: true})
	line := tree.NewText("done", style.Style{})
	require.NoError(t, tree.AppendChild(root, log))
	require.NoError(t, tree.AppendChild(log, line))

	rootLN, logLN, lineLN := flex.NewNode(), flex.NewNode(), flex.NewNode()
	rootLN.AppendChild(logLN)
	logLN.AppendChild(lineLN)
	lineLN.SetMeasureFunc(func(int, flex.MeasureMode) flex.Size { return flex.Size{} })
	require.NoError(t, tree.BindLayout(root, rootLN))
	require.NoError(t, tree.BindLayout(log, logLN))
	require.NoError(t, tree.BindLayout(line, lineLN))

	require.NoError(t, tree.MarkStaticRendered(log))
	assert.True(t, tree.StaticRendered(log))
	assert.Nil(t, tree.LayoutNode(log))
	assert.Nil(t, tree.LayoutNode(line))
	assert.Zero(t, rootLN.ChildCount())
	assert.False(t, lineLN.HasMeasureFunc())
	assert.Same(t, rootLN, tree.LayoutNode(root))
}

func TestTransform(t *testing.T) {
	tree := New()
	h := tree.NewText("x", style.Style{})
	assert.Nil(t, tree.Transform(h))
	require.NoError(t, tree.SetTransform(h, func(line string, _ int) string { return "> " + line }))
	assert.Equal(t, "> x", tree.Transform(h)("x", 0))
}
