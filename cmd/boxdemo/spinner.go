package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/screen"
)

// spinner animates a text node with a dot-style frame and a label.
type spinner struct {
	node     boxtree.Handle
	label    string
	frames   []string
	interval time.Duration
}

func newSpinner(node boxtree.Handle, label string) *spinner {
	return &spinner{
		node:     node,
		label:    label,
		frames:   []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
		interval: 80 * time.Millisecond,
	}
}

func (s *spinner) frame(elapsed time.Duration) string {
	idx := int(elapsed/s.interval) % len(s.frames)
	return s.frames[idx] + " " + s.label
}

// run advances the frame on every interval until ctx is done.
func (s *spinner) run(ctx context.Context, session *screen.Session) error {
	start := time.Now()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			text := s.frame(now.Sub(start))
			err := session.Update(ctx, func(tree *boxtree.Tree) error {
				return tree.SetText(s.node, text)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("spinner: %w", err)
			}
		}
	}
}
