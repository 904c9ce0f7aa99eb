// Package screen keeps a terminal in sync with a box tree. It renders into
// the normal scrollback buffer (no alternate screen): each pass rewrites
// only the parts of the visible rows that changed, and falls back to a
// clear and full repaint when lines that scrolled out of reach change.
package screen

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"

	"github.com/vito/boxdiff/pkg/ansidiff"
	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/layout"
	"github.com/vito/boxdiff/pkg/render"
)

// Options configure a Session.
type Options struct {
	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// OnInput receives raw input bytes other than Ctrl-C. It is called on
	// the goroutine running Run.
	OnInput func([]byte)
}

// Cursor is the logical cursor restored after every pass. Y is a frame
// line index.
type Cursor struct {
	X, Y    int
	Visible bool
}

// Session renders one box tree to one terminal.
type Session struct {
	tree    *boxtree.Tree
	root    boxtree.Handle
	term    Terminal
	logger  *slog.Logger
	onInput func([]byte)

	mu sync.Mutex // protects all mutable state below

	lines        []string
	cols, rows   int
	scrollOffset int
	cursor       Cursor
	cursorPlaced bool
	cache        render.StaticCache
	stats        RenderStats
	fullRedraws  int
	debugWriter  io.Writer

	renderCh chan struct{}
	updates  chan update
}

// New creates a session drawing the tree rooted at root on term.
func New(term Terminal, tree *boxtree.Tree, root boxtree.Handle, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		tree:     tree,
		root:     root,
		term:     term,
		logger:   logger,
		onInput:  opts.OnInput,
		cols:     term.Columns(),
		rows:     term.Rows(),
		cursor:   Cursor{Visible: true},
		renderCh: make(chan struct{}, 1),
		updates:  make(chan update),
	}
}

// RenderOption overrides part of the session for a single pass.
type RenderOption func(*pass)

type pass struct {
	term       Terminal
	logger     *slog.Logger
	cols, rows int
}

// WithTerminal renders the pass to t, using its dimensions. The previous
// frame is assumed to be on t.
func WithTerminal(t Terminal) RenderOption {
	return func(p *pass) {
		p.term = t
		p.cols, p.rows = t.Columns(), t.Rows()
	}
}

// WithStderr sends the pass's diagnostics to w.
func WithStderr(w io.Writer) RenderOption {
	return func(p *pass) {
		p.logger = slog.New(tint.NewHandler(w, &tint.Options{
			Level:   slog.LevelDebug,
			NoColor: true,
		}))
	}
}

// SetDebugWriter enables render stats logging as JSONL to w. Pass nil to
// disable.
func (s *Session) SetDebugWriter(w io.Writer) {
	s.mu.Lock()
	s.debugWriter = w
	s.mu.Unlock()
}

// Lines returns the frame written by the last pass.
func (s *Session) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Stats returns the stats of the last pass.
func (s *Session) Stats() RenderStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// FullRedraws returns how many passes cleared and repainted the screen.
func (s *Session) FullRedraws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullRedraws
}

// Size returns the dimensions the session renders at.
func (s *Session) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

// SetCursor places the logical cursor at column x of frame line y.
func (s *Session) SetCursor(x, y int) {
	s.mu.Lock()
	s.cursor.X, s.cursor.Y = x, y
	s.cursorPlaced = true
	s.mu.Unlock()
}

// ResetCursor returns the cursor to its resting place below the frame.
func (s *Session) ResetCursor() {
	s.mu.Lock()
	s.cursorPlaced = false
	s.mu.Unlock()
}

// HideCursor keeps the hardware cursor hidden after each pass.
func (s *Session) HideCursor() {
	s.mu.Lock()
	s.cursor.Visible = false
	s.mu.Unlock()
}

// ShowCursor shows the hardware cursor after each pass.
func (s *Session) ShowCursor() {
	s.mu.Lock()
	s.cursor.Visible = true
	s.mu.Unlock()
}

// Cursor returns the logical cursor.
func (s *Session) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// ClearScreen clears the screen and its scrollback and forgets the
// previous frame, so the next pass repaints everything. Static lines stay
// cached and are replayed.
func (s *Session) ClearScreen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearScreen(s.term)
}

func (s *Session) clearScreen(term Terminal) error {
	s.lines = nil
	s.scrollOffset = 0
	if _, err := io.WriteString(term, clearScreen); err != nil {
		return fmt.Errorf("clear screen: %w", err)
	}
	return nil
}

// Reset clears the screen like ClearScreen and also drops the static
// lines. Static nodes that were already rendered are not rendered again.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Reset()
	return s.clearScreen(s.term)
}

// HandleResize picks up the terminal's new dimensions, clears the screen,
// and repaints the whole frame.
func (s *Session) HandleResize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cols, s.rows = s.term.Columns(), s.term.Rows()
	s.logger.Debug("terminal resized", "cols", s.cols, "rows", s.rows)
	if err := s.clearScreen(s.term); err != nil {
		return err
	}
	return s.render()
}

// Render runs one pass: it renders the tree and brings the terminal from
// the previous frame to the new one.
func (s *Session) Render(opts ...RenderOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.render(opts...)
}

func (s *Session) render(opts ...RenderOption) error {
	totalStart := time.Now()

	p := pass{term: s.term, logger: s.logger, cols: s.cols, rows: s.rows}
	for _, opt := range opts {
		opt(&p)
	}

	stats := RenderStats{FirstChangedLine: -1, LastChangedLine: -1}

	extractStart := time.Now()
	// Frames taller than the viewport scroll into the scrollback.
	frame, err := render.ExtractLines(s.tree, s.root, &s.cache, p.cols, layout.Undefined)
	if err != nil {
		return fmt.Errorf("extract lines: %w", err)
	}
	stats.ExtractTime = time.Since(extractStart)

	newLines := frame.Lines()
	oldLines := s.lines
	stats.TotalLines = len(newLines)
	stats.StaticLines = len(frame.Static)
	stats.NewStaticLines = frame.NewStatic

	diffStart := time.Now()

	// Lines above the viewport can no longer be reached by the cursor.
	scrollBuffer := max(0, len(oldLines)-p.rows, s.scrollOffset)
	stats.ScrollBuffer = scrollBuffer
	stats.FirstChangedLine, stats.LastChangedLine = changedRange(oldLines, newLines)

	var buf strings.Builder
	var top int
	switch {
	case len(oldLines) == 0:
		top = fullRedraw(&buf, newLines, p.rows, &stats)
	case stats.FirstChangedLine >= 0 && stats.FirstChangedLine < scrollBuffer:
		p.logger.Debug("scrollback changed, repainting",
			"line", stats.FirstChangedLine,
			"scrollBuffer", scrollBuffer)
		top = fullRedraw(&buf, newLines, p.rows, &stats)
	default:
		top = patch(&buf, oldLines, newLines, scrollBuffer, p.rows, &stats)
	}
	if stats.FullRedraw {
		s.fullRedraws++
	}

	s.placeCursor(&buf, len(newLines), top, p.rows)
	stats.DiffTime = time.Since(diffStart)
	stats.BytesWritten = buf.Len()

	writeStart := time.Now()
	_, err = io.WriteString(p.term, buf.String())
	stats.WriteTime = time.Since(writeStart)

	s.lines = newLines
	s.scrollOffset = top

	stats.TotalTime = time.Since(totalStart)
	s.stats = stats
	if s.debugWriter != nil {
		stats.writeJSON(s.debugWriter)
	}
	p.logger.Debug("rendered", "stats", stats)

	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// fullRedraw clears the screen and scrollback and writes every line. It
// returns the resulting viewport top.
func fullRedraw(buf *strings.Builder, lines []string, rows int, stats *RenderStats) int {
	stats.FullRedraw = true
	stats.LinesRepainted = len(lines)
	stats.CacheHits = 0

	buf.WriteString(clearScreen)
	buf.WriteString(hideCursor)
	for i, line := range lines {
		if i > 0 {
			buf.WriteString("\r\n")
		}
		buf.WriteString(ansidiff.ExpandTabs(line))
	}
	return max(0, len(lines)-rows)
}

// patch rewrites the lines from top onwards that differ between oldLines
// and lines. Lines past the bottom of the viewport are appended by
// scrolling. It returns the resulting viewport top.
func patch(buf *strings.Builder, oldLines, lines []string, top, rows int, stats *RenderStats) int {
	buf.WriteString(hideCursor)
	for i := top; i < max(len(lines), len(oldLines)); i++ {
		oldLine, hadOld := lineAt(oldLines, i)
		newLine, hasNew := lineAt(lines, i)
		if hadOld && hasNew && oldLine == newLine {
			stats.CacheHits++
			continue
		}
		stats.LinesRepainted++

		row := i - top
		switch {
		case row >= rows:
			// only new lines can be past the viewport
			moveTo(buf, rows-1, 0)
			buf.WriteString("\r\n")
			buf.WriteString(ansidiff.ExpandTabs(newLine))
			top++
		case !hasNew:
			moveTo(buf, row, 0)
			buf.WriteString(clearLine)
		case !hadOld:
			moveTo(buf, row, 0)
			buf.WriteString(ansidiff.ExpandTabs(newLine))
		default:
			updateLine(buf, row, oldLine, newLine)
		}
	}
	return top
}

// placeCursor moves the hardware cursor to the logical cursor, or to the
// row below the frame when none was placed.
func (s *Session) placeCursor(buf *strings.Builder, total, top, rows int) {
	if rows <= 0 {
		return
	}
	row, col := min(max(total-top, 0), rows-1), 0
	if s.cursorPlaced {
		row = min(max(s.cursor.Y-top, 0), rows-1)
		col = max(s.cursor.X, 0)
	}
	moveTo(buf, row, col)
	if s.cursor.Visible {
		buf.WriteString(showCursor)
	}
}

func lineAt(lines []string, i int) (string, bool) {
	if i < 0 || i >= len(lines) {
		return "", false
	}
	return lines[i], true
}

// changedRange returns the first and last line indices that differ, or -1
// if none do.
func changedRange(oldLines, lines []string) (int, int) {
	first, last := -1, -1
	for i := range max(len(oldLines), len(lines)) {
		o, hadOld := lineAt(oldLines, i)
		n, hasNew := lineAt(lines, i)
		if hadOld == hasNew && o == n {
			continue
		}
		if first == -1 {
			first = i
		}
		last = i
	}
	return first, last
}
