package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"powercurve/internal/analysis"
	"powercurve/internal/config"
	"powercurve/internal/export"
	"powercurve/internal/ingest"
	"powercurve/internal/logging"
	"powercurve/internal/render"
	"powercurve/internal/service"
	"powercurve/internal/store"
	"powercurve/internal/tui"
	"powercurve/internal/workout"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const (
	modePlot = "plot"
	modeSave = "save"
)

type options struct {
	configPath string
	ftp        float64
	outDir     string
	start, end float64 // minutes
	export     string
	record     bool
	logLevel   string
	initConfig bool
}

// usageError marks failures caused by the invocation rather than the data
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("powercurve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Config file (default ~/.powercurve/config.json)")
	fs.Float64Var(&opts.ftp, "ftp", 0, "FTP override in watts")
	fs.StringVar(&opts.outDir, "out", "", "Output directory for figures and exports")
	fs.Float64Var(&opts.start, "start", 0, "Focus window start in minutes")
	fs.Float64Var(&opts.end, "end", 0, "Focus window end in minutes (0 = end of workout)")
	fs.StringVar(&opts.export, "export", "", "Also export samples and peak curve: csv|parquet")
	fs.BoolVar(&opts.record, "record", false, "Save workouts and power records to the history database")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	fs.BoolVar(&opts.initConfig, "init-config", false, "Write an example config file and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <file>... <plot|save>\n\nSupported inputs: %s\n\n",
			fs.Name(), strings.Join(ingest.Default().Formats(), ", "))
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.initConfig {
		if err := config.CreateExample(opts.configPath); err != nil {
			fmt.Fprintf(stderr, "creating example config: %v\n", err)
			return exitFailure
		}
		fmt.Fprintln(stdout, "Example config written. Edit athlete.ftp before analyzing.")
		return exitOK
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fs.Usage()
		return exitUsage
	}
	files, mode := rest[:len(rest)-1], rest[len(rest)-1]
	if mode != modePlot && mode != modeSave {
		fmt.Fprintf(stderr, "unknown mode %q (expected plot or save)\n\n", mode)
		fs.Usage()
		return exitUsage
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(opts, set)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}

	level, _ := cfg.LogLevel()
	logger := logging.Init(stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = execute(ctx, cfg, opts, files, mode, stdout, logger)
	var uerr usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &uerr):
		fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	default:
		logger.Error("powercurve failed", "error", err)
		return exitFailure
	}
}

// loadConfig reads the config file, falling back to defaults when there is
// none, and applies the flags that were set.
func loadConfig(opts options, set map[string]bool) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if errors.Is(err, config.ErrNoConfig) {
		defaults := config.DefaultConfig()
		cfg, err = &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if set["ftp"] {
		cfg.Athlete.FTP = opts.ftp
	}
	if set["out"] {
		cfg.Output.Dir = opts.outDir
	}
	if set["export"] {
		cfg.Output.Export = opts.export
	}
	if opts.record {
		cfg.Store.Enabled = true
	}
	if set["log-level"] {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func execute(ctx context.Context, cfg *config.Config, opts options, files []string, mode string, stdout io.Writer, logger *slog.Logger) error {
	registry := ingest.Default()
	for _, f := range files {
		if !registry.Supports(f) {
			return usageError{fmt.Errorf("unsupported file type %q (supported: %s)", f, strings.Join(registry.Formats(), ", "))}
		}
	}
	focus, err := focusWindow(opts.start, opts.end)
	if err != nil {
		return usageError{err}
	}

	analyzer, err := service.NewAnalyzer(cfg.Params(), logger)
	if err != nil {
		return err
	}

	workouts, err := loadWorkouts(ctx, registry, files, cfg.IngestOptions(logger), focus)
	if err != nil {
		return err
	}

	progress := make(chan service.Progress)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			logger.Debug("analysis progress", "workout", p.Workout, "completed", p.Completed, "total", p.Total)
		}
	}()
	reports, err := analyzer.AnalyzeAll(ctx, workouts, progress)
	<-done
	if err != nil {
		return err
	}

	var loader tui.RecordLoader
	var newRecords []service.NewRecord
	if cfg.Store.Enabled {
		path, err := cfg.StorePath()
		if err != nil {
			return err
		}
		st, err := store.Open(path)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer st.Close()

		recorder := service.NewRecordService(st, logger)
		if newRecords, err = recorder.Record(ctx, reports); err != nil {
			return err
		}
		loader = recorder
	}

	if cfg.Output.Export != "" || mode == modeSave {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if cfg.Output.Export != "" {
		for _, r := range reports {
			paths, err := export.Write(cfg.Output.Dir, cfg.Output.Export, r)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(stdout, "exported %s\n", p)
			}
		}
	}

	if mode == modePlot {
		return tui.Run(tui.NewApp(reports, loader, newRecords))
	}

	path, err := saveFigure(cfg, reports)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved %s\n", path)
	for _, r := range newRecords {
		fmt.Fprintf(stdout, "new %s record: %.0f W (%s)\n", analysis.FormatDuration(r.DurationSeconds), r.Watts, r.Workout)
	}
	return nil
}

// window is a focus window in seconds; end 0 means the end of the workout
type window struct{ start, end int }

func focusWindow(startMin, endMin float64) (window, error) {
	w := window{start: int(startMin * 60), end: int(endMin * 60)}
	if w.start < 0 || w.end < 0 {
		return w, errors.New("-start and -end must not be negative")
	}
	if w.end > 0 && w.end <= w.start {
		return w, fmt.Errorf("-end (%g min) must be after -start (%g min)", endMin, startMin)
	}
	return w, nil
}

func loadWorkouts(ctx context.Context, registry *ingest.Registry, files []string, opts ingest.Options, focus window) ([]*workout.Workout, error) {
	workouts := make([]*workout.Workout, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, err := registry.Load(f, opts)
			if err != nil {
				return err
			}
			if focus.start > 0 || focus.end > 0 {
				end := focus.end
				if end == 0 {
					end = w.Len()
				}
				if focus.start >= w.Len() {
					return fmt.Errorf("%s: focus window starts after the workout ends (%d s)", w.Name(), w.Len())
				}
				if w, err = w.Slice(focus.start, end); err != nil {
					return err
				}
			}
			workouts[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return workouts, nil
}

func saveFigure(cfg *config.Config, reports []*service.Report) (string, error) {
	name, err := service.OutputName(reports, ".png")
	if err != nil {
		return "", err
	}
	path := filepath.Join(cfg.Output.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating figure: %w", err)
	}
	if err := render.Figure(f, reports, render.Options{Width: cfg.Output.Width, Height: cfg.Output.Height}); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
