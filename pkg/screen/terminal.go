package screen

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/vito/boxdiff/pkg/ioctx"
)

// Terminal abstracts terminal I/O so the session can be driven by a
// simulated terminal in tests.
type Terminal interface {
	io.Writer

	// Start puts the terminal into raw mode and begins listening for input
	// and resize events. onInput receives raw bytes from the input stream.
	// onResize is called after the terminal dimensions change.
	Start(onInput func([]byte), onResize func()) error

	// Stop restores the terminal to its original state.
	Stop()

	// Columns returns the current terminal width.
	Columns() int

	// Rows returns the current terminal height.
	Rows() int
}

const (
	defaultColumns = 80
	defaultRows    = 24
)

// ProcessTerminal is a Terminal backed by the process's stdin and stdout.
// Dimensions are cached and refreshed on SIGWINCH.
type ProcessTerminal struct {
	in  *os.File
	out io.Writer

	origTermios *unix.Termios
	sigCh       chan os.Signal
	stopCtx     context.Context
	stopCancel  context.CancelFunc
	stopOnce    sync.Once

	sizeMu sync.RWMutex
	cols   int
	rows   int

	// Fallback dimensions used when the size cannot be queried.
	FallbackColumns int
	FallbackRows    int
}

// NewProcessTerminal returns a terminal reading from os.Stdin and writing to
// the stdout carried by ctx, or os.Stdout if there is none.
func NewProcessTerminal(ctx context.Context) *ProcessTerminal {
	out := ioctx.StdoutFromContext(ctx)
	if out == io.Discard {
		out = os.Stdout
	}
	in := os.Stdin
	if f, ok := ioctx.StdinFromContext(ctx).(*os.File); ok {
		in = f
	}
	t := &ProcessTerminal{in: in, out: out}
	t.refreshSize()
	return t
}

func (t *ProcessTerminal) Start(onInput func([]byte), onResize func()) error {
	t.stopCtx, t.stopCancel = context.WithCancel(context.Background())

	fd := int(t.in.Fd())
	orig, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}
	t.origTermios = orig

	// Raw input, but keep output post-processing so that \n still returns
	// the carriage.
	raw := *orig
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag |= unix.OPOST | unix.ONLCR
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return fmt.Errorf("set raw: %w", err)
	}

	t.refreshSize()

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := t.in.Read(buf)
			if n > 0 {
				// Copy so the callback can keep the slice.
				data := make([]byte, n)
				copy(data, buf[:n])
				onInput(data)
			}
			if err != nil {
				return
			}
		}
	}()

	t.sigCh = make(chan os.Signal, 1)
	signal.Notify(t.sigCh, syscall.SIGWINCH)
	go func() {
		for {
			select {
			case <-t.sigCh:
				t.refreshSize()
				if onResize != nil {
					onResize()
				}
			case <-t.stopCtx.Done():
				return
			}
		}
	}()

	return nil
}

func (t *ProcessTerminal) Stop() {
	t.stopOnce.Do(func() {
		if t.stopCancel != nil {
			t.stopCancel()
		}
		if t.sigCh != nil {
			signal.Stop(t.sigCh)
		}
		if t.origTermios != nil {
			_ = unix.IoctlSetTermios(int(t.in.Fd()), ioctlWriteTermios, t.origTermios)
		}
	})
}

func (t *ProcessTerminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

func (t *ProcessTerminal) Columns() int {
	t.sizeMu.RLock()
	c := t.cols
	t.sizeMu.RUnlock()
	if c == 0 {
		if t.FallbackColumns > 0 {
			return t.FallbackColumns
		}
		return defaultColumns
	}
	return c
}

func (t *ProcessTerminal) Rows() int {
	t.sizeMu.RLock()
	r := t.rows
	t.sizeMu.RUnlock()
	if r == 0 {
		if t.FallbackRows > 0 {
			return t.FallbackRows
		}
		return defaultRows
	}
	return r
}

// refreshSize queries the kernel for the current dimensions. Called on
// creation, at Start, and on every SIGWINCH.
func (t *ProcessTerminal) refreshSize() {
	f, ok := t.out.(*os.File)
	if !ok {
		return
	}
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return
	}
	t.sizeMu.Lock()
	if ws.Col > 0 {
		t.cols = int(ws.Col)
	}
	if ws.Row > 0 {
		t.rows = int(ws.Row)
	}
	t.sizeMu.Unlock()
}
