package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/kr/pretty"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vito/boxdiff/pkg/boxtree"
	"github.com/vito/boxdiff/pkg/config"
	"github.com/vito/boxdiff/pkg/ioctx"
	"github.com/vito/boxdiff/pkg/layout"
	"github.com/vito/boxdiff/pkg/render"
	"github.com/vito/boxdiff/pkg/screen"
)

//go:embed demo.toml
var defaultLayout string

// Config holds the application configuration
type Config struct {
	Debug      bool
	ConfigFile string
	LogFile    string
	RenderLog  string
	DebugAddr  string
	Once       bool
	DumpLayout bool
	Layout     string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "boxdemo [flags] [layout.toml]",
		Short: "Live terminal demo of the box renderer",
		Long: `boxdemo renders a TOML layout document to the terminal and keeps it
up to date, repainting only the cells that changed between frames.

Without a layout argument a built-in layout with a clock and a growing
log is shown.`,
		Example: `  # Run the built-in demo
  boxdemo

  # Render one frame of a custom layout and exit
  boxdemo --once layout.toml

  # Record per-frame statistics and serve pprof
  boxdemo --render-log /tmp/boxdiff.jsonl --debug-addr 127.0.0.1:6060`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Layout = args[0]
			}
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&cfg.ConfigFile, "config", "", "Path to boxdiff.toml (searched upward from the working directory if not specified)")
	rootCmd.Flags().StringVar(&cfg.LogFile, "log-file", "", "Path to log file (logs are discarded while the screen is live if not specified)")
	rootCmd.Flags().StringVar(&cfg.RenderLog, "render-log", "", "Path to a JSONL log of render statistics")
	rootCmd.Flags().StringVar(&cfg.DebugAddr, "debug-addr", "", "Serve pprof and expvar on this address")
	rootCmd.Flags().BoolVar(&cfg.Once, "once", false, "Render one frame to stdout and exit")
	rootCmd.Flags().BoolVar(&cfg.DumpLayout, "dump-layout", false, "Print the computed layout of every node and exit")

	rootCmd.AddCommand(statsCmd())

	ctx := context.Background()
	ctx = ioctx.StdinToContext(ctx, os.Stdin)
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			if errors.Is(err, screen.ErrInterrupted) {
				return
			}
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		if errors.Is(err, screen.ErrInterrupted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func loadSettings(cfg Config) (*config.Config, error) {
	if cfg.ConfigFile != "" {
		return config.Load(cfg.ConfigFile)
	}
	_, settings, err := config.Find(".")
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = config.Default()
	}
	return settings, nil
}

// setupLogging installs a tint handler as the default logger. While the
// screen is live, logs only go to a file.
func setupLogging(ctx context.Context, cfg Config, settings *config.Config, live bool) (func(), error) {
	level, err := settings.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		level = slog.LevelDebug
	}

	closer := func() {}
	var w io.Writer
	noColor := !settings.Log.Color
	switch {
	case settings.Log.File != "":
		f, err := os.OpenFile(settings.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closer = func() { _ = f.Close() }
	case live:
		w = io.Discard
	default:
		w = ioctx.StderrFromContext(ctx)
	}

	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:   level,
		NoColor: noColor,
	})))
	return closer, nil
}

func loadLayout(path string) (config.Element, error) {
	if path == "" {
		return config.ParseDocument(defaultLayout)
	}
	return config.LoadDocument(path)
}

func run(ctx context.Context, cfg Config) error {
	settings, err := loadSettings(cfg)
	if err != nil {
		return err
	}
	if cfg.LogFile != "" {
		settings.Log.File = cfg.LogFile
	}
	if cfg.RenderLog != "" {
		settings.Render.DebugLog = cfg.RenderLog
	}

	live := !cfg.Once && !cfg.DumpLayout
	closeLog, err := setupLogging(ctx, cfg, settings, live)
	if err != nil {
		return err
	}
	defer closeLog()

	doc, err := loadLayout(cfg.Layout)
	if err != nil {
		return err
	}
	tree, root, ids, err := config.BuildTree(doc)
	if err != nil {
		return fmt.Errorf("build layout: %w", err)
	}

	term := screen.NewProcessTerminal(ctx)
	term.FallbackColumns = settings.Terminal.Columns
	term.FallbackRows = settings.Terminal.Rows

	stdout := ioctx.StdoutFromContext(ctx)
	switch {
	case cfg.DumpLayout:
		return dumpLayout(stdout, tree, root, term.Columns())
	case cfg.Once:
		return renderOnce(stdout, tree, root, term.Columns(), term.Rows())
	}

	d, err := newDemo(tree, ids)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	d.quit = cancel

	session := screen.New(term, tree, root, screen.Options{
		Logger:  slog.Default(),
		OnInput: d.handleInput,
	})
	d.session = session

	if settings.Render.DebugLog != "" {
		f, err := os.Create(settings.Render.DebugLog)
		if err != nil {
			return fmt.Errorf("open render log: %w", err)
		}
		defer f.Close() //nolint:errcheck // best-effort close of debug log
		session.SetDebugWriter(f)
	}

	if cfg.DebugAddr != "" {
		if err := setupDebugHandlers(cfg.DebugAddr, session); err != nil {
			return fmt.Errorf("debug handlers: %w", err)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return session.Run(ctx)
	})
	eg.Go(func() error {
		return d.tick(ctx, settings.Render.Interval)
	})
	eg.Go(func() error {
		return d.spinner.run(ctx, session)
	})
	return eg.Wait()
}

// renderOnce writes a single frame without touching the terminal mode.
func renderOnce(w io.Writer, tree *boxtree.Tree, root boxtree.Handle, cols, rows int) error {
	var cache render.StaticCache
	frame, err := render.ExtractLines(tree, root, &cache, cols, rows)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.Join(frame.Lines(), "\n"))
	return err
}

func dumpLayout(w io.Writer, tree *boxtree.Tree, root boxtree.Handle, cols int) error {
	if err := layout.Calculate(tree, root, cols, layout.Undefined); err != nil {
		return err
	}
	for h := range tree.Walk(root) {
		r, ok := layout.Rect(tree, h)
		if !ok {
			continue
		}
		desc := tree.Kind(h).String()
		if tree.Kind(h) == boxtree.Text {
			desc = fmt.Sprintf("%s %q", desc, tree.Text(h))
		}
		if _, err := pretty.Fprintf(w, "%s %s %# v\n", h, desc, r); err != nil {
			return err
		}
	}
	return nil
}
