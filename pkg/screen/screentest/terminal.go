// Package screentest provides a simulated terminal for testing code that
// drives a screen.Terminal.
package screentest

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

type cell struct {
	text string
	sgr  string
	// width is 0 for the right half of a wide character.
	width int
}

var blank = cell{text: " ", width: 1}

// Terminal is an in-memory terminal with a viewport of Rows() lines and
// unbounded scrollback. It understands cursor movement, line and screen
// erasure, SGR state, and cursor visibility; other escape sequences are
// ignored. A line feed also returns the carriage, as a tty does with ONLCR.
type Terminal struct {
	mu sync.Mutex

	cols, rows int
	screen     [][]cell
	scrollback [][]cell

	x, y    int
	sgr     string
	visible bool
	partial string

	out  strings.Builder
	mark int

	onInput  func([]byte)
	onResize func()
	started  bool
	stopped  bool
}

// New returns a blank terminal of the given size.
func New(cols, rows int) *Terminal {
	t := &Terminal{cols: cols, rows: rows, visible: true}
	t.screen = make([][]cell, rows)
	for i := range t.screen {
		t.screen[i] = blankRow(cols)
	}
	return t
}

func blankRow(cols int) []cell {
	row := make([]cell, cols)
	for i := range row {
		row[i] = blank
	}
	return row
}

func (t *Terminal) Start(onInput func([]byte), onResize func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onInput = onInput
	t.onResize = onResize
	t.started = true
	t.stopped = false
	return nil
}

func (t *Terminal) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *Terminal) Columns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols
}

func (t *Terminal) Rows() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rows
}

// Started reports whether Start was called, and Stopped whether Stop was
// called after it.
func (t *Terminal) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

func (t *Terminal) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Write interprets p. Escape sequences split across writes are joined.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.Write(p)
	t.interpret(t.partial + string(p))
	return len(p), nil
}

// Output returns everything written so far.
func (t *Terminal) Output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.String()
}

// Mark remembers the current end of the output; Since returns what was
// written after it.
func (t *Terminal) Mark() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mark = t.out.Len()
}

func (t *Terminal) Since() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.out.String()[t.mark:]
}

// Lines returns the text of the viewport rows with trailing blanks
// removed.
func (t *Terminal) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return plain(t.screen)
}

// Scrollback returns the text of the rows that scrolled off the top.
func (t *Terminal) Scrollback() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return plain(t.scrollback)
}

// StyledLines returns the viewport rows with their SGR state re-encoded.
// Runs are closed with a reset and trailing unstyled blanks are removed.
func (t *Terminal) StyledLines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := make([]string, len(t.screen))
	for i, row := range t.screen {
		end := len(row)
		for end > 0 && row[end-1].sgr == "" && (row[end-1].text == " " || row[end-1].width == 0) {
			end--
		}
		var b strings.Builder
		cur := ""
		for _, c := range row[:end] {
			if c.width == 0 {
				continue
			}
			if c.sgr != cur {
				if cur != "" {
					b.WriteString("\x1b[0m")
				}
				b.WriteString(c.sgr)
				cur = c.sgr
			}
			b.WriteString(c.text)
		}
		if cur != "" {
			b.WriteString("\x1b[0m")
		}
		lines[i] = b.String()
	}
	return lines
}

// Cursor returns the cursor position, 0-based.
func (t *Terminal) Cursor() (x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return min(t.x, t.cols-1), t.y
}

// CursorVisible reports whether the cursor is shown.
func (t *Terminal) CursorVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible
}

// Type delivers input as if it were typed. It does nothing before Start.
func (t *Terminal) Type(data []byte) {
	t.mu.Lock()
	fn := t.onInput
	live := t.started && !t.stopped
	t.mu.Unlock()
	if live && fn != nil {
		fn(data)
	}
}

// Resize changes the dimensions and fires the resize callback. Rows that
// no longer fit move into the scrollback.
func (t *Terminal) Resize(cols, rows int) {
	t.mu.Lock()
	for len(t.screen) > rows {
		if t.y > 0 {
			t.scrollback = append(t.scrollback, t.screen[0])
			t.screen = t.screen[1:]
			t.y--
		} else {
			t.screen = t.screen[:len(t.screen)-1]
		}
	}
	for len(t.screen) < rows {
		t.screen = append(t.screen, blankRow(cols))
	}
	for i, row := range t.screen {
		t.screen[i] = resizeRow(row, cols)
	}
	t.cols, t.rows = cols, rows
	t.x = min(t.x, cols)
	fn := t.onResize
	live := t.started && !t.stopped
	t.mu.Unlock()
	if live && fn != nil {
		fn()
	}
}

func resizeRow(row []cell, cols int) []cell {
	if len(row) >= cols {
		row = row[:cols]
		if cols > 0 && row[cols-1].width == 2 {
			row[cols-1] = blank
		}
		return row
	}
	for len(row) < cols {
		row = append(row, blank)
	}
	return row
}

func plain(rows [][]cell) []string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for _, c := range row {
			if c.width > 0 {
				b.WriteString(c.text)
			}
		}
		lines[i] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

func (t *Terminal) interpret(s string) {
	t.partial = ""
	for len(s) > 0 {
		switch s[0] {
		case '\x1b':
			n, ok := t.escape(s)
			if !ok {
				t.partial = s
				return
			}
			s = s[n:]
			continue
		case '\r':
			t.x = 0
		case '\n':
			t.x = 0
			t.lineFeed()
		case '\b':
			t.x = max(0, min(t.x, t.cols-1)-1)
		case '\a', '\t':
		default:
			r, size := utf8.DecodeRuneInString(s)
			t.put(s[:size], r)
			s = s[size:]
			continue
		}
		s = s[1:]
	}
}

// escape handles the sequence at the start of s, returning its length, or
// false if s ends before the sequence does.
func (t *Terminal) escape(s string) (int, bool) {
	if len(s) < 2 {
		return 0, false
	}
	if s[1] != '[' {
		return 2, true
	}
	end := 2
	for end < len(s) && (s[end] < 0x40 || s[end] > 0x7e) {
		end++
	}
	if end == len(s) {
		return 0, false
	}
	t.csi(s[2:end], s[end], s[:end+1])
	return end + 1, true
}

func (t *Terminal) csi(params string, final byte, seq string) {
	private := strings.HasPrefix(params, "?")
	args := parseParams(strings.TrimPrefix(params, "?"))
	arg := func(i, def int) int {
		if i < len(args) && args[i] > 0 {
			return args[i]
		}
		return def
	}
	switch final {
	case 'H', 'f':
		t.y = clamp(arg(0, 1)-1, 0, t.rows-1)
		t.x = clamp(arg(1, 1)-1, 0, t.cols-1)
	case 'G':
		t.x = clamp(arg(0, 1)-1, 0, t.cols-1)
	case 'A':
		t.y = clamp(t.y-arg(0, 1), 0, t.rows-1)
	case 'B':
		t.y = clamp(t.y+arg(0, 1), 0, t.rows-1)
	case 'C':
		t.x = clamp(t.x+arg(0, 1), 0, t.cols-1)
	case 'D':
		t.x = clamp(min(t.x, t.cols-1)-arg(0, 1), 0, t.cols-1)
	case 'K':
		t.eraseLine(argOr(args, 0))
	case 'J':
		t.eraseScreen(argOr(args, 0))
	case 'm':
		if params == "" || params == "0" {
			t.sgr = ""
		} else {
			t.sgr += seq
		}
	case 'h', 'l':
		if private && len(args) == 1 && args[0] == 25 {
			t.visible = final == 'h'
		}
	}
}

func argOr(args []int, def int) int {
	if len(args) == 0 {
		return def
	}
	return args[0]
}

func parseParams(params string) []int {
	if params == "" {
		return nil
	}
	parts := strings.Split(params, ";")
	args := make([]int, len(parts))
	for i, p := range parts {
		args[i], _ = strconv.Atoi(p)
	}
	return args
}

func (t *Terminal) eraseLine(mode int) {
	if t.y < 0 || t.y >= len(t.screen) {
		return
	}
	row := t.screen[t.y]
	x := min(t.x, t.cols-1)
	switch mode {
	case 0:
		for i := max(x, 0); i < len(row); i++ {
			row[i] = blank
		}
	case 1:
		for i := 0; i <= x && i < len(row); i++ {
			row[i] = blank
		}
	case 2:
		for i := range row {
			row[i] = blank
		}
	}
}

func (t *Terminal) eraseScreen(mode int) {
	switch mode {
	case 0:
		t.eraseLine(0)
		for y := t.y + 1; y < len(t.screen); y++ {
			t.screen[y] = blankRow(t.cols)
		}
	case 2:
		for y := range t.screen {
			t.screen[y] = blankRow(t.cols)
		}
	case 3:
		t.scrollback = nil
	}
}

func (t *Terminal) lineFeed() {
	if t.y < t.rows-1 {
		t.y++
		return
	}
	t.scrollback = append(t.scrollback, t.screen[0])
	t.screen = append(t.screen[1:], blankRow(t.cols))
}

func (t *Terminal) put(text string, r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		if t.x > 0 && t.y < len(t.screen) {
			prev := &t.screen[t.y][min(t.x, t.cols)-1]
			prev.text += text
		}
		return
	}
	if t.x+w > t.cols {
		// deferred autowrap
		t.x = 0
		t.lineFeed()
	}
	if w > t.cols {
		return
	}
	row := t.screen[t.y]
	for i := t.x; i < t.x+w; i++ {
		switch row[i].width {
		case 0:
			if i > 0 {
				row[i-1] = blank
			}
		case 2:
			if i+1 < len(row) {
				row[i+1] = blank
			}
		}
	}
	row[t.x] = cell{text: text, sgr: t.sgr, width: w}
	if w == 2 {
		row[t.x+1] = cell{sgr: t.sgr}
	}
	t.x += w
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
