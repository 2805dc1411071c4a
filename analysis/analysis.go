// Package analysis orchestrates a measurement run over a folder: scanning
// for supported files, driving each through decode and the DR reduction,
// and collecting outcomes in filename order regardless of how the work is
// scheduled.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/drmeter/decode"
	"github.com/zsiec/drmeter/dr"
	"github.com/zsiec/drmeter/report"
)

// ErrNotDir reports a run target that is missing or not a directory.
var ErrNotDir = errors.New("not a valid directory")

// Progress receives per-file lifecycle events during a run. Accepting an
// interface here decouples the run loop from the console, making it
// testable with recorders. Index is zero-based; in parallel runs calls for
// different files may be concurrent.
type Progress interface {
	FileStarted(index, total int, name string)
	FileDone(index, total int, name string, track report.Track, elapsed time.Duration)
	FileFailed(index, total int, name string, err error)
}

// Config parameterizes one run.
type Config struct {
	Jobs     int      // concurrent analyses; values below 2 run sequentially
	Progress Progress // optional; nil disables progress callbacks
}

type outcome struct {
	track report.Track
	err   error
}

// Files lists the supported audio files directly in dir, sorted by name.
// Symlinks to regular files count; subdirectories are not descended into.
func Files(dir string) ([]string, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !decode.Supported(e.Name()) {
			continue
		}
		full := filepath.Join(dir, e.Name())
		if fi, err := os.Stat(full); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, full)
	}
	sort.Strings(files)
	return files, nil
}

// File opens, analyzes, and closes one audio file. The decoder handle is
// released on every path.
func File(path string) (report.Track, error) {
	info, src, err := decode.Open(path)
	if err != nil {
		return report.Track{}, err
	}
	defer src.Close()

	res, err := dr.Analyze(info, src)
	if err != nil {
		return report.Track{}, err
	}
	return report.Track{
		Filename:     filepath.Base(path),
		DR:           res.DR,
		PeakDB:       res.PeakDB,
		RMSDB:        res.RMSDB,
		DurationSecs: res.DurationSecs,
		Channels:     info.Channels,
		SampleRate:   info.SampleRate,
		BitDepth:     info.BitDepth,
	}, nil
}

// Run analyzes files and splits the outcomes into tracks and failures,
// both in the order the files were given. A file that fails to decode
// becomes a Failure and never aborts the run; the returned error is
// non-nil only when ctx ends the run early.
func Run(ctx context.Context, files []string, cfg Config) ([]report.Track, []report.Failure, error) {
	prog := cfg.Progress
	if prog == nil {
		prog = nopProgress{}
	}
	total := len(files)
	outs := make([]outcome, total)

	analyze := func(i int, path string) {
		name := filepath.Base(path)
		prog.FileStarted(i, total, name)
		start := time.Now()
		track, err := File(path)
		if err != nil {
			slog.Debug("analysis failed", "file", name, "error", err)
			outs[i] = outcome{err: err}
			prog.FileFailed(i, total, name, err)
			return
		}
		slog.Debug("analysis done", "file", name, "dr", track.DR, "elapsed", time.Since(start))
		outs[i] = outcome{track: track}
		prog.FileDone(i, total, name, track, time.Since(start))
	}

	if cfg.Jobs > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Jobs)
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				analyze(i, path)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			analyze(i, path)
		}
	}

	var tracks []report.Track
	var failures []report.Failure
	for i, out := range outs {
		if out.err != nil {
			failures = append(failures, report.Failure{
				Filename: filepath.Base(files[i]),
				Message:  out.err.Error(),
			})
			continue
		}
		tracks = append(tracks, out.track)
	}
	return tracks, failures, nil
}

type nopProgress struct{}

func (nopProgress) FileStarted(int, int, string)                           {}
func (nopProgress) FileDone(int, int, string, report.Track, time.Duration) {}
func (nopProgress) FileFailed(int, int, string, error)                     {}
