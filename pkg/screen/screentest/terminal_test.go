package screentest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *Terminal, s string) {
	_, _ = t.Write([]byte(s))
}

func TestCursorAddressing(t *testing.T) {
	term := New(10, 3)
	write(term, "\x1b[2;3Hab\x1b[1;1Hz\x1b[3;10Hq")
	assert.Equal(t, []string{"z", "  ab", "         q"}, term.Lines())

	write(term, "\x1b[H\x1b[2Bx\x1b[1Ay\x1b[5Gw\x1b[2Dv")
	assert.Equal(t, []string{"z", " yavw", "x        q"}, term.Lines())
}

func TestEraseLine(t *testing.T) {
	for _, example := range []struct {
		name string
		seq  string
		want string
	}{
		{"to end", "\x1b[0K", "abc"},
		{"to end by default", "\x1b[K", "abc"},
		{"to start", "\x1b[1K", "    efgh"},
		{"entire line", "\x1b[2K", ""},
	} {
		t.Run(example.name, func(t *testing.T) {
			term := New(8, 1)
			write(term, "abcdefgh\x1b[1;4H"+example.seq)
			assert.Equal(t, example.want, term.Lines()[0])
		})
	}
}

func TestLineFeedScrolls(t *testing.T) {
	term := New(4, 2)
	write(term, "one\ntwo\nsix\r\nten")
	assert.Equal(t, []string{"six", "ten"}, term.Lines())
	assert.Equal(t, []string{"one", "two"}, term.Scrollback())

	write(term, "\x1b[2J\x1b[3J\x1b[H")
	assert.Equal(t, []string{"", ""}, term.Lines())
	assert.Empty(t, term.Scrollback())
}

func TestDeferredWrap(t *testing.T) {
	term := New(4, 3)
	write(term, "abcd\r\nefgh")
	assert.Equal(t, []string{"abcd", "efgh", ""}, term.Lines())

	write(term, "ij")
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, term.Lines())
}

func TestStyledLines(t *testing.T) {
	term := New(10, 1)
	write(term, "\x1b[31mab\x1b[1mc\x1b[0md  ")
	assert.Equal(t, []string{"\x1b[31mab\x1b[0m\x1b[31m\x1b[1mc\x1b[0md"}, term.StyledLines())
	assert.Equal(t, []string{"abcd"}, term.Lines())
}

func TestCursorVisibility(t *testing.T) {
	term := New(4, 1)
	assert.True(t, term.CursorVisible())
	write(term, "\x1b[?25l")
	assert.False(t, term.CursorVisible())
	write(term, "\x1b[?25h")
	assert.True(t, term.CursorVisible())
}

func TestSplitEscape(t *testing.T) {
	term := New(6, 1)
	write(term, "ab\x1b[1;")
	write(term, "5Hz")
	assert.Equal(t, "ab  z", term.Lines()[0])
	assert.Equal(t, "ab\x1b[1;5Hz", term.Output())
}

func TestWideRunes(t *testing.T) {
	term := New(6, 1)
	write(term, "日本x")
	assert.Equal(t, "日本x", term.Lines()[0])

	write(term, "\x1b[1;2Hz")
	assert.Equal(t, " z本x", term.Lines()[0])
}

func TestMarkSince(t *testing.T) {
	term := New(4, 1)
	write(term, "ab")
	term.Mark()
	write(term, "cd")
	assert.Equal(t, "cd", term.Since())
	assert.Equal(t, "abcd", term.Output())
}

func TestCallbacks(t *testing.T) {
	term := New(4, 2)
	var typed []byte
	resized := 0

	term.Type([]byte("ignored"))
	term.Resize(5, 2)
	assert.Zero(t, resized)

	require.NoError(t, term.Start(func(b []byte) { typed = append(typed, b...) }, func() { resized++ }))
	term.Type([]byte("hi"))
	term.Resize(6, 3)
	assert.Equal(t, []byte("hi"), typed)
	assert.Equal(t, 1, resized)
	assert.Equal(t, 6, term.Columns())
	assert.Equal(t, 3, term.Rows())

	term.Stop()
	term.Type([]byte("late"))
	assert.Equal(t, []byte("hi"), typed)
	assert.True(t, term.Stopped())
}

func TestResizeKeepsCursorRow(t *testing.T) {
	term := New(4, 3)
	write(term, "a\r\nb\r\nc")
	term.Resize(4, 2)
	assert.Equal(t, []string{"b", "c"}, term.Lines())
	assert.Equal(t, []string{"a"}, term.Scrollback())
}
