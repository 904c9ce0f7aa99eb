package screen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vito/boxdiff/pkg/boxtree"
)

// ErrInterrupted is returned by Run when the user presses Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

const ctrlC = 0x03

type update struct {
	fn   func(*boxtree.Tree) error
	done chan error
}

// RequestRender asks Run for a pass. Requests made before the pass starts
// are coalesced into one.
func (s *Session) RequestRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

// Update runs fn against the tree on the goroutine running Run, then
// renders. It blocks until both are done and returns fn's error, or the
// render's if fn succeeded. Nothing is rendered when fn fails.
func (s *Session) Update(ctx context.Context, fn func(*boxtree.Tree) error) error {
	u := update{fn: fn, done: make(chan error, 1)}
	select {
	case s.updates <- u:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-u.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run clears the screen, renders the first frame, and starts the terminal.
// It then serves render requests, updates, resizes and input on the calling
// goroutine until ctx is done, returning nil, or until Ctrl-C is pressed,
// returning ErrInterrupted. A failed render ends Run with its error.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	err := s.clearScreen(s.term)
	if err == nil {
		err = s.render()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	input := make(chan []byte, 16)
	resized := make(chan struct{}, 1)
	err = s.term.Start(
		func(data []byte) {
			select {
			case input <- data:
			case <-ctx.Done():
			}
		},
		func() {
			select {
			case resized <- struct{}{}:
			default:
			}
		},
	)
	if err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer s.term.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.finish()

		case data := <-input:
			if bytes.IndexByte(data, ctrlC) >= 0 {
				// the cursor comes back before anything else happens
				_, _ = io.WriteString(s.term, showCursor)
				_ = s.finish()
				s.logger.Debug("interrupted")
				return ErrInterrupted
			}
			if s.onInput != nil {
				s.onInput(data)
			}

		case <-resized:
			if err := s.HandleResize(); err != nil {
				return err
			}

		case <-s.renderCh:
			if err := s.Render(); err != nil {
				return err
			}

		case u := <-s.updates:
			if err := s.apply(u); err != nil {
				return err
			}
		}
	}
}

// apply runs an update and reports back to its caller. Only render errors
// are returned.
func (s *Session) apply(u update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := u.fn(s.tree); err != nil {
		u.done <- err
		return nil
	}
	err := s.render()
	u.done <- err
	return err
}

// finish leaves the cursor visible at the start of a line below the frame,
// so that the shell prompt does not overwrite it.
func (s *Session) finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var buf strings.Builder
	if n := len(s.lines) - s.scrollOffset; n > 0 && s.rows > 0 {
		moveTo(&buf, min(n, s.rows)-1, 0)
		buf.WriteString("\r\n")
	}
	buf.WriteString(showCursor)
	if _, err := io.WriteString(s.term, buf.String()); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	return nil
}
