package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/config"
	"github.com/vito/boxdiff/pkg/screen"
	"github.com/vito/boxdiff/pkg/style"
)

// demo owns the nodes the demo mutates. The tree is only touched from the
// goroutine running the session: directly from input, and through
// Session.Update from the ticker.
type demo struct {
	session *screen.Session
	tree    *boxtree.Tree
	quit    context.CancelFunc

	log     boxtree.Handle
	clock   boxtree.Handle
	stats   boxtree.Handle
	spinner *spinner

	entries  int
	colorful bool
}

func newDemo(tree *boxtree.Tree, ids config.IDs) (*demo, error) {
	d := &demo{tree: tree}
	var spin boxtree.Handle
	for id, dst := range map[string]*boxtree.Handle{
		"log":     &d.log,
		"clock":   &d.clock,
		"stats":   &d.stats,
		"spinner": &spin,
	} {
		h, err := ids.Lookup(id)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		*dst = h
	}
	d.spinner = newSpinner(spin, "live")
	return d, nil
}

// handleInput is called on the session goroutine for every key other than
// Ctrl-C.
func (d *demo) handleInput(data []byte) {
	var err error
	switch string(data) {
	case "q":
		d.quit()
		return
	case "a":
		err = d.appendEntries(1)
	case "A":
		err = d.appendEntries(10)
	case "c":
		err = d.toggleColor()
	case "\x0c":
		err = d.session.ClearScreen()
	default:
		return
	}
	if err != nil {
		slog.Error("input handler failed", "input", string(data), "error", err)
		return
	}
	d.session.RequestRender()
}

func (d *demo) appendEntries(n int) error {
	for range n {
		d.entries++
		line := fmt.Sprintf("%s  entry #%d", time.Now().Format(time.TimeOnly), d.entries)
		h := d.tree.NewText(line, style.Resolve(style.Attributes{
			"color": entryColor(d.entries),
		}))
		if err := d.tree.AppendChild(d.log, h); err != nil {
			return err
		}
	}
	return nil
}

func entryColor(n int) string {
	colors := []string{"blue", "magenta", "yellow", "green"}
	return colors[n%len(colors)]
}

func (d *demo) toggleColor() error {
	d.colorful = !d.colorful
	c := "green"
	if d.colorful {
		c = "magentaBright"
	}
	return d.tree.ApplyStyle(d.clock, style.Attributes{"color": c, "bold": d.colorful})
}

// tick updates the clock and stats line, appending a log entry every
// tenth tick. It returns when ctx is done.
func (d *demo) tick(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			stats := d.session.Stats()
			redraws := d.session.FullRedraws()
			err := d.session.Update(ctx, func(tree *boxtree.Tree) error {
				if err := tree.SetText(d.clock, now.Format(time.TimeOnly)); err != nil {
					return err
				}
				if err := tree.SetText(d.stats, statsLine(stats, redraws)); err != nil {
					return err
				}
				if n%10 == 0 {
					return d.appendEntries(1)
				}
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("tick: %w", err)
			}
		}
	}
}

func statsLine(stats screen.RenderStats, redraws int) string {
	return fmt.Sprintf("%d lines, %d repainted, %d B, %s, %d full redraws",
		stats.TotalLines,
		stats.LinesRepainted,
		stats.BytesWritten,
		stats.TotalTime.Round(time.Microsecond),
		redraws)
}
