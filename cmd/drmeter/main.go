package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zsiec/drmeter/analysis"
	"github.com/zsiec/drmeter/decode"
	"github.com/zsiec/drmeter/report"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var (
		output      string
		quiet       bool
		jobs        int
		format      string
		watch       bool
		showVersion bool
	)
	flag.StringVar(&output, "output", "", "Report path (default <folder>/dr_report.txt, or .json for json format)")
	flag.StringVar(&output, "o", "", "Shorthand for -output")
	flag.BoolVar(&quiet, "quiet", false, "Suppress console progress")
	flag.BoolVar(&quiet, "q", false, "Shorthand for -quiet")
	flag.IntVar(&jobs, "jobs", 1, "Number of files to analyse concurrently")
	flag.StringVar(&format, "format", "txt", "Report format: txt or json")
	flag.BoolVar(&watch, "watch", false, "Keep running and re-analyse whenever the folder changes")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("drmeter %s\n", version)
		return
	}

	folder := "."
	if flag.NArg() > 0 {
		folder = flag.Arg(0)
	}

	rf := report.Format(format)
	if rf != report.FormatText && rf != report.FormatJSON {
		fmt.Fprintf(os.Stderr, "Error: unknown report format '%s'.\n", format)
		os.Exit(1)
	}
	if output == "" {
		name := "dr_report.txt"
		if rf == report.FormatJSON {
			name = "dr_report.json"
		}
		output = filepath.Join(folder, name)
	}

	slog.Debug("drmeter starting", "version", version, "folder", folder, "jobs", jobs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	m := &meter{
		folder: folder,
		output: output,
		format: rf,
		quiet:  quiet,
		jobs:   jobs,
	}

	if err := m.runOnce(ctx); err != nil {
		os.Exit(1)
	}
	if !watch {
		return
	}
	if err := m.watchLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("watch failed", "error", err)
		os.Exit(1)
	}
}

type meter struct {
	folder string
	output string
	format report.Format
	quiet  bool
	jobs   int
}

// runOnce performs one full scan-analyse-report cycle. It prints its own
// diagnostics; a non-nil return means the process should exit non-zero.
func (m *meter) runOnce(ctx context.Context) error {
	files, err := analysis.Files(m.folder)
	if err != nil {
		if errors.Is(err, analysis.ErrNotDir) {
			fmt.Fprintf(os.Stderr, "Error: '%s' is not a valid directory.\n", m.folder)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No audio files found in '%s'.\n", m.folder)
		return nil
	}

	if !m.quiet {
		fmt.Printf("DR Measure — found %d audio file(s) in %s\n\n", len(files), m.folder)
	}

	var prog analysis.Progress
	if !m.quiet {
		prog = &console{parallel: m.jobs > 1}
	}
	tracks, failures, err := analysis.Run(ctx, files, analysis.Config{
		Jobs:     m.jobs,
		Progress: prog,
	})
	if err != nil {
		return err
	}

	doc := report.New(m.folder, tracks, failures)
	if err := report.Save(m.output, doc, m.format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
		return err
	}
	if !m.quiet {
		fmt.Printf("\n  Report written → %s\n", m.output)
	}
	return nil
}

// watchLoop re-runs the analysis whenever the folder's audio contents
// settle after a change. The report file itself is ignored so writing it
// does not retrigger a run.
func (m *meter) watchLoop(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(m.folder); err != nil {
		return err
	}
	slog.Info("watching folder", "folder", m.folder)

	const settle = 2 * time.Second
	timer := time.NewTimer(settle)
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) == filepath.Clean(m.output) {
				continue
			}
			if !decode.Supported(ev.Name) {
				continue
			}
			slog.Debug("folder changed", "event", ev.String())
			timer.Reset(settle)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", "error", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := m.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

type console struct {
	// parallel switches from the two-part progress line (prefix printed at
	// start, result appended in place) to whole lines at completion, since
	// concurrent analyses finish out of order.
	parallel bool
}

func (c *console) FileStarted(i, total int, name string) {
	if c.parallel {
		return
	}
	fmt.Printf("  [%d/%d] Analysing %s … ", i+1, total, name)
}

func (c *console) FileDone(i, total int, name string, track report.Track, elapsed time.Duration) {
	if c.parallel {
		fmt.Printf("  [%d/%d] Analysing %s … DR%d (%.1fs)\n", i+1, total, name, track.DR, elapsed.Seconds())
		return
	}
	fmt.Printf("DR%d (%.1fs)\n", track.DR, elapsed.Seconds())
}

func (c *console) FileFailed(i, total int, name string, err error) {
	if c.parallel {
		fmt.Printf("  [%d/%d] Analysing %s … ERROR: %v\n", i+1, total, name, err)
		return
	}
	fmt.Printf("ERROR: %v\n", err)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  drmeter [flags] [folder]\n\n")
	fmt.Fprintf(os.Stderr, "Measures the DR (Dynamic Range) of the lossless audio files in folder\n")
	fmt.Fprintf(os.Stderr, "(default: current directory) and writes a report next to them.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
