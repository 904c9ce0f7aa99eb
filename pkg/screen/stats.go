package screen

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"
)

// RenderStats captures performance metrics for a single render pass.
type RenderStats struct {
	// ExtractTime is how long layout and painting took.
	ExtractTime time.Duration

	// DiffTime is how long building the escape stream took.
	DiffTime time.Duration

	// WriteTime is how long it took to write the escape stream to the
	// terminal.
	WriteTime time.Duration

	// TotalTime is the wall-clock duration of the pass.
	TotalTime time.Duration

	// TotalLines is the number of lines in the frame, static included.
	TotalLines int

	// StaticLines is the number of static lines in the frame, and
	// NewStaticLines how many of them were rendered by this pass.
	StaticLines    int
	NewStaticLines int

	// LinesRepainted is the number of lines that were written or cleared.
	LinesRepainted int

	// CacheHits is the number of lines that matched the previous frame
	// and were skipped.
	CacheHits int

	// FullRedraw is true when the screen was cleared and every line
	// written.
	FullRedraw bool

	// BytesWritten is the number of bytes sent to the terminal.
	BytesWritten int

	// ScrollBuffer is the number of lines above the viewport that could
	// not be addressed by this pass.
	ScrollBuffer int

	// FirstChangedLine and LastChangedLine bound the lines that differed
	// from the previous frame, or are -1 if nothing changed.
	FirstChangedLine int
	LastChangedLine  int
}

// renderStatsJSON is the JSONL record written by the debug writer.
type renderStatsJSON struct {
	Ts             int64 `json:"ts"`
	TotalUs        int64 `json:"total_us"`
	ExtractUs      int64 `json:"extract_us"`
	DiffUs         int64 `json:"diff_us"`
	WriteUs        int64 `json:"write_us"`
	TotalLines     int   `json:"total_lines"`
	StaticLines    int   `json:"static_lines"`
	NewStaticLines int   `json:"new_static_lines"`
	LinesRepainted int   `json:"lines_repainted"`
	CacheHits      int   `json:"cache_hits"`
	FullRedraw     bool  `json:"full_redraw"`
	BytesWritten   int   `json:"bytes_written"`
	ScrollBuffer   int   `json:"scroll_buffer"`
	FirstChanged   int   `json:"first_changed"`
	LastChanged    int   `json:"last_changed"`
}

func (stats RenderStats) writeJSON(w io.Writer) {
	rec := renderStatsJSON{
		Ts:             time.Now().UnixMilli(),
		TotalUs:        stats.TotalTime.Microseconds(),
		ExtractUs:      stats.ExtractTime.Microseconds(),
		DiffUs:         stats.DiffTime.Microseconds(),
		WriteUs:        stats.WriteTime.Microseconds(),
		TotalLines:     stats.TotalLines,
		StaticLines:    stats.StaticLines,
		NewStaticLines: stats.NewStaticLines,
		LinesRepainted: stats.LinesRepainted,
		CacheHits:      stats.CacheHits,
		FullRedraw:     stats.FullRedraw,
		BytesWritten:   stats.BytesWritten,
		ScrollBuffer:   stats.ScrollBuffer,
		FirstChanged:   stats.FirstChangedLine,
		LastChanged:    stats.LastChangedLine,
	}
	data, _ := json.Marshal(rec)
	data = append(data, '\n')
	w.Write(data) //nolint:errcheck
}

// LogValue lets the stats be logged as a group.
func (stats RenderStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("total", stats.TotalTime),
		slog.Duration("extract", stats.ExtractTime),
		slog.Duration("diff", stats.DiffTime),
		slog.Duration("write", stats.WriteTime),
		slog.Int("lines", stats.TotalLines),
		slog.Int("static", stats.StaticLines),
		slog.Int("repainted", stats.LinesRepainted),
		slog.Int("hits", stats.CacheHits),
		slog.Bool("full", stats.FullRedraw),
		slog.Int("bytes", stats.BytesWritten),
	)
}
