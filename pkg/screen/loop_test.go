package screen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/screen/screentest"
	"github.com/vito/boxdiff/pkg/style"
)

// run starts Run in the background and waits for the terminal to start.
func (f *fixture) run(ctx context.Context) <-chan error {
	f.t.Helper()
	errs := make(chan error, 1)
	go func() { errs <- f.session.Run(ctx) }()
	require.Eventually(f.t, f.term.Started, time.Second, time.Millisecond)
	return errs
}

func wait(t *testing.T, errs <-chan error) error {
	t.Helper()
	select {
	case err := <-errs:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestRunCtrlC(t *testing.T) {
	f := newFixture(t, 10, 3, "running")
	errs := f.run(context.Background())
	assert.Equal(t, []string{"running", "", ""}, f.term.Lines())

	f.term.Mark()
	f.term.Type([]byte{0x03})

	err := wait(t, errs)
	require.ErrorIs(t, err, ErrInterrupted)
	assert.True(t, strings.HasPrefix(f.term.Since(), showCursor), "%q", f.term.Since())
	assert.True(t, f.term.CursorVisible())
	assert.True(t, f.term.Stopped())
}

func TestRunUpdate(t *testing.T) {
	f := newFixture(t, 10, 3, "hello")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := f.run(ctx)

	h := f.child(0)
	require.NoError(t, f.session.Update(ctx, func(tree *boxtree.Tree) error {
		return tree.SetText(h, "goodbye")
	}))
	assert.Equal(t, "goodbye", f.term.Lines()[0])

	t.Run("failed update renders nothing", func(t *testing.T) {
		boom := errors.New("boom")
		f.term.Mark()
		err := f.session.Update(ctx, func(tree *boxtree.Tree) error {
			if err := tree.SetText(h, "half done"); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Empty(t, f.term.Since())
	})

	t.Run("structure errors reach the caller", func(t *testing.T) {
		err := f.session.Update(ctx, func(tree *boxtree.Tree) error {
			return tree.AppendChild(h, tree.NewText("x", style.Resolve(nil)))
		})
		require.ErrorIs(t, err, boxtree.ErrStructure)
	})

	cancel()
	require.NoError(t, wait(t, errs))
	assert.True(t, strings.HasSuffix(f.term.Output(), showCursor))
}

func TestRunRequestRender(t *testing.T) {
	f := newFixture(t, 10, 3, "before")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := f.run(ctx)

	require.NoError(t, f.tree.SetText(f.child(0), "after"))
	f.session.RequestRender()
	f.session.RequestRender()

	assert.Eventually(t, func() bool {
		return f.term.Lines()[0] == "after"
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, wait(t, errs))
}

func TestRunResize(t *testing.T) {
	f := newFixture(t, 10, 3, "hello")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := f.run(ctx)
	require.Equal(t, 1, f.session.FullRedraws())

	f.term.Resize(12, 4)
	assert.Eventually(t, func() bool {
		return f.session.FullRedraws() == 2
	}, time.Second, time.Millisecond)
	cols, rows := f.session.Size()
	assert.Equal(t, 12, cols)
	assert.Equal(t, 4, rows)

	cancel()
	require.NoError(t, wait(t, errs))
}

func TestRunForwardsInput(t *testing.T) {
	term := screentest.New(10, 3)
	tree := boxtree.New()
	root := tree.NewContainer(style.Resolve(nil))
	input := make(chan []byte, 1)
	session := New(term, tree, root, Options{
		OnInput: func(data []byte) { input <- data },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := make(chan error, 1)
	go func() { errs <- session.Run(ctx) }()
	require.Eventually(t, term.Started, time.Second, time.Millisecond)

	term.Type([]byte("q"))
	select {
	case data := <-input:
		assert.Equal(t, []byte("q"), data)
	case <-time.After(5 * time.Second):
		t.Fatal("input was not forwarded")
	}

	cancel()
	require.NoError(t, wait(t, errs))
}
