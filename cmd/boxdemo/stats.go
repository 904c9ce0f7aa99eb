package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vito/boxdiff/pkg/ioctx"
)

// renderRecord is the subset of a render log line that stats reads.
type renderRecord struct {
	Ts             int64 `json:"ts"`
	TotalUs        int64 `json:"total_us"`
	TotalLines     int   `json:"total_lines"`
	NewStaticLines int   `json:"new_static_lines"`
	LinesRepainted int   `json:"lines_repainted"`
	FullRedraw     bool  `json:"full_redraw"`
	BytesWritten   int   `json:"bytes_written"`
}

type statsSummary struct {
	Frames      int
	FullRedraws int
	Repainted   int
	StaticLines int
	Bytes       int
	Total       time.Duration
	Slowest     time.Duration
}

func (s *statsSummary) add(rec renderRecord) {
	d := time.Duration(rec.TotalUs) * time.Microsecond
	s.Frames++
	if rec.FullRedraw {
		s.FullRedraws++
	}
	s.Repainted += rec.LinesRepainted
	s.StaticLines += rec.NewStaticLines
	s.Bytes += rec.BytesWritten
	s.Total += d
	s.Slowest = max(s.Slowest, d)
}

func (s statsSummary) String() string {
	var avg time.Duration
	if s.Frames > 0 {
		avg = s.Total / time.Duration(s.Frames)
	}
	return fmt.Sprintf("%d frames (%d full), %d lines repainted, %d static, %d bytes, avg %s, slowest %s",
		s.Frames, s.FullRedraws, s.Repainted, s.StaticLines, s.Bytes, avg, s.Slowest)
}

func statsCmd() *cobra.Command {
	var (
		logFile string
		follow  bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a render statistics log",
		Long: `Reads the JSONL log written with --render-log and prints totals for
the recorded frames. With --follow the log is tailed and every new frame
is printed as it is written.`,
		Example: `  # In terminal 1: record frames
  boxdemo --render-log /tmp/boxdiff.jsonl

  # In terminal 2: watch them
  boxdemo stats --follow --file /tmp/boxdiff.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stdout := ioctx.StdoutFromContext(ctx)

			var summary statsSummary
			emit := func(rec renderRecord) {
				summary.add(rec)
				if follow {
					fmt.Fprintf(stdout, "%s  %6dus  %3d lines  %3d repainted  full=%t\n", //nolint:errcheck
						time.UnixMilli(rec.Ts).Format("15:04:05.000"),
						rec.TotalUs, rec.TotalLines, rec.LinesRepainted, rec.FullRedraw)
				}
			}
			if err := readLog(ctx, logFile, follow, emit); err != nil {
				return err
			}
			_, err := fmt.Fprintln(stdout, summary)
			return err
		},
	}

	cmd.Flags().StringVar(&logFile, "file", "/tmp/boxdiff.jsonl", "Path to the JSONL render log")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep reading as frames are appended")

	return cmd
}

// readLog decodes every record in path. When follow is set it keeps
// polling for appended records, starting over if the file is truncated,
// until ctx is done.
func readLog(ctx context.Context, path string, follow bool, emit func(renderRecord)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open render log: %w", err)
	}
	defer f.Close() //nolint:errcheck

	for {
		if err := scanRecords(f, emit); err != nil {
			return err
		}
		if !follow {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(50 * time.Millisecond):
		}

		info, err := f.Stat()
		if err != nil {
			return err
		}
		pos, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if info.Size() < pos {
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return err
			}
		}
	}
}

// scanRecords decodes complete lines from r. Lines that are not valid
// records are skipped.
func scanRecords(r io.Reader, emit func(renderRecord)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var rec renderRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		emit(rec)
	}
	return scanner.Err()
}
