// Package transfer pushes staged files and folders to the media server,
// skipping anything that is already there.
package transfer

//go:generate mockgen -source=engine.go -destination=mocks/mock_remote.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/vmunix/arrpush/internal/media"
	"github.com/vmunix/arrpush/internal/remote"
)

// Remote is the transport the engine drives.
type Remote interface {
	// Exists reports whether a remote path is present.
	Exists(ctx context.Context, path string) (bool, error)

	// MkdirAll creates a remote directory and its parents.
	MkdirAll(ctx context.Context, dir string) error

	// Copy streams a local file to a remote path, reporting progress.
	Copy(ctx context.Context, local, target string, onProgress func(remote.Progress)) error
}

// Ensure remote.Client implements Remote.
var _ Remote = (*remote.Client)(nil)

// Config configures the engine.
type Config struct {
	VideoExts   media.ExtSet
	SidecarExts media.ExtSet
}

// Job is one unit of work for the engine.
type Job struct {
	ID        string
	LocalPath string
	Category  media.Category
	Recursive bool // LocalPath is a folder
}

// FileResult is the outcome of one file.
type FileResult struct {
	Local   string
	Target  string
	Skipped bool // target already existed, nothing was written
}

// Result is the outcome of a file or folder transfer.
type Result struct {
	Path     string
	Category media.Category
	Files    []FileResult
}

// Copied returns the number of files actually written.
func (r *Result) Copied() int {
	n := 0
	for _, f := range r.Files {
		if !f.Skipped {
			n++
		}
	}
	return n
}

// Skipped returns the number of files that already existed remotely.
func (r *Result) Skipped() int {
	return len(r.Files) - r.Copied()
}

// Engine copies files to their remote targets.
type Engine struct {
	remote      Remote
	targets     Targets
	videoExts   media.ExtSet
	sidecarExts media.ExtSet
	observer    Observer
	log         *slog.Logger
}

// New creates an engine. A nil observer discards progress.
func New(r Remote, targets Targets, cfg Config, observer Observer, logger *slog.Logger) *Engine {
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		remote:      r,
		targets:     targets,
		videoExts:   cfg.VideoExts,
		sidecarExts: cfg.SidecarExts,
		observer:    observer,
		log:         logger,
	}
}

// Target returns the remote target for a local file.
func (e *Engine) Target(local string, c media.Category) (string, error) {
	return e.targets.Resolve(local, c)
}

// Run transfers a job as a single file or as a folder.
func (e *Engine) Run(ctx context.Context, job Job) (*Result, error) {
	je := *e
	je.log = e.log.With("job_id", job.ID)
	if job.Recursive {
		return je.TransferFolder(ctx, job.LocalPath, job.Category)
	}
	return je.TransferFile(ctx, job.LocalPath, job.Category)
}

// TransferFile copies one file to its remote target.
// A target that already exists is a successful no-op.
func (e *Engine) TransferFile(ctx context.Context, local string, c media.Category) (*Result, error) {
	res := &Result{Path: local, Category: c}
	fr, err := e.transferOne(ctx, local, c)
	if err != nil {
		return res, err
	}
	res.Files = append(res.Files, fr)
	return res, nil
}

// TransferFolder copies every video file under dir, each followed by its
// sidecars, in lexical order. It stops at the first failure; files after it
// are never attempted.
func (e *Engine) TransferFolder(ctx context.Context, dir string, c media.Category) (*Result, error) {
	res := &Result{Path: dir, Category: c}

	videos, err := media.FindVideos(dir, e.videoExts)
	if err != nil {
		return res, fmt.Errorf("enumerate %s: %w", dir, err)
	}
	if len(videos) == 0 {
		return res, fmt.Errorf("%w: %s", ErrNoVideoFiles, dir)
	}

	e.log.Info("transferring folder",
		"path", dir,
		"category", c.String(),
		"videos", len(videos))

	seen := make(map[string]bool)
	for _, video := range videos {
		sidecars, err := media.SidecarsFor(video, e.sidecarExts)
		if err != nil {
			return res, fmt.Errorf("sidecars for %s: %w", video, err)
		}
		for _, f := range append([]string{video}, sidecars...) {
			if seen[f] {
				continue
			}
			seen[f] = true

			fr, err := e.transferOne(ctx, f, c)
			if err != nil {
				return res, err
			}
			res.Files = append(res.Files, fr)
		}
	}

	e.log.Info("folder transfer completed",
		"path", dir,
		"copied", res.Copied(),
		"skipped", res.Skipped())
	return res, nil
}

func (e *Engine) transferOne(ctx context.Context, local string, c media.Category) (FileResult, error) {
	target, err := e.targets.Resolve(local, c)
	if err != nil {
		return FileResult{}, fmt.Errorf("resolve target for %s: %w", local, err)
	}
	fr := FileResult{Local: local, Target: target}

	exists, err := e.remote.Exists(ctx, target)
	if err != nil {
		return fr, fmt.Errorf("%w: %s: %w", ErrExistenceCheck, target, err)
	}
	if exists {
		e.log.Info("remote target exists, skipping", "path", local, "target", target)
		fr.Skipped = true
		return fr, nil
	}

	if err := e.remote.MkdirAll(ctx, path.Dir(target)); err != nil {
		return fr, fmt.Errorf("%w: %s: %w", ErrRemoteDirectory, path.Dir(target), err)
	}

	info, err := os.Stat(local)
	if err != nil {
		return fr, &TransferError{Local: local, Target: target, ExitCode: -1, Err: err}
	}
	total := info.Size()
	name := filepath.Base(local)

	e.log.Info("transfer started", "path", local, "target", target, "bytes", total)
	start := time.Now()

	e.observer.Start(name, total)
	err = e.remote.Copy(ctx, local, target, func(p remote.Progress) {
		e.observer.Update(Progress{
			File:    name,
			Percent: p.Percent,
			Bytes:   total * int64(p.Percent) / 100,
			Total:   total,
		})
	})
	e.observer.Finish(err == nil)

	if err != nil {
		terr := &TransferError{Local: local, Target: target, ExitCode: -1, Err: err}
		var cmdErr *remote.CommandError
		if errors.As(err, &cmdErr) {
			terr.ExitCode = cmdErr.Code
			terr.Tail = cmdErr.Tail
		}
		return fr, terr
	}

	e.log.Info("transfer completed",
		"path", local,
		"target", target,
		"bytes", total,
		"duration_ms", time.Since(start).Milliseconds())
	return fr, nil
}
