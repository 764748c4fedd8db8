// Package pipeline drives watch events through classification, transfer and
// cleanup, one job at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/arrpush/internal/events"
	"github.com/vmunix/arrpush/internal/layout"
	"github.com/vmunix/arrpush/internal/media"
	"github.com/vmunix/arrpush/internal/transfer"
	"github.com/vmunix/arrpush/internal/watcher"
)

// Transferer copies a job to the remote.
type Transferer interface {
	Run(ctx context.Context, job transfer.Job) (*transfer.Result, error)
}

// Cleaner moves local content to the trash.
type Cleaner interface {
	DeleteFile(path string) bool
	DeleteFolder(path string) bool
}

// Outcome is the terminal result of handling one event.
type Outcome struct {
	JobID    string
	State    State
	Category media.Category
	Result   *transfer.Result
	Err      error
}

// Orchestrator owns every decision about a discovered path.
type Orchestrator struct {
	layout  layout.Layout
	engine  Transferer
	cleaner Cleaner
	bus     *events.Bus
	log     *slog.Logger
}

// NewOrchestrator creates an orchestrator. bus may be nil.
func NewOrchestrator(l layout.Layout, engine Transferer, cleaner Cleaner, bus *events.Bus, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		layout:  l,
		engine:  engine,
		cleaner: cleaner,
		bus:     bus,
		log:     logger,
	}
}

// Handle runs one event to a terminal state. It never panics on bad input and
// never returns early with work half done: a failed transfer leaves local data
// in place.
func (o *Orchestrator) Handle(ctx context.Context, e watcher.Event) Outcome {
	out := Outcome{JobID: uuid.NewString(), State: Discovered}
	log := o.log.With("job_id", out.JobID, "path", e.Path)
	log.Debug("event discovered", "kind", e.Kind.String(), "state", out.State.String())

	if o.layout.IsReservedRoot(e.Path) || !o.layout.Contains(e.Path) {
		out.State = Ignored
		log.Debug("ignoring path outside the watch tree or a reserved root")
		return out
	}
	info, err := os.Stat(e.Path)
	if err != nil {
		out.State = Ignored
		log.Info("path vanished before processing", "error", err)
		return out
	}
	dir := info.IsDir()
	if dir && o.layout.IsReservedName(filepath.Base(e.Path)) {
		out.State = Ignored
		log.Debug("ignoring folder named like a reserved subtree")
		return out
	}

	out.Category = Classify(o.layout, e.Path, dir)
	out.State = Classified
	log = log.With("category", out.Category.String())
	log.Info("classified", "folder", dir, "state", out.State.String())

	job := transfer.Job{ID: out.JobID, LocalPath: e.Path, Category: out.Category, Recursive: dir}
	o.publish(ctx, &events.TransferStarted{
		BaseEvent: events.NewBaseEvent(events.EventTransferStarted, job.ID),
		Path:      job.LocalPath,
		Category:  job.Category.String(),
		Recursive: job.Recursive,
	})

	out.State = Transferring
	start := time.Now()
	res, err := o.engine.Run(ctx, job)
	out.Result = res
	if err != nil {
		out.State = Retained
		out.Err = err
		o.failed(ctx, log, job, err)
		return out
	}
	o.succeeded(ctx, log, job, res, time.Since(start))

	trashed, err := o.commit(ctx, log, job, res)
	switch {
	case err != nil:
		out.State = Retained
		out.Err = err
	case trashed:
		out.State = Committed
	default:
		out.State = Retained
	}
	log.Info("job finished", "state", out.State.String())
	return out
}

// Classify assigns the category of a path under the watch root. Membership
// of a reserved subtree wins over any name heuristic.
func Classify(l layout.Layout, path string, dir bool) media.Category {
	if c, ok := l.ReservedCategory(path); ok {
		return c
	}
	if dir {
		return media.ClassifyFolder(path)
	}
	return media.ClassifyFile(path)
}

// commitPaths lists what a successful job moves to the trash, and whether
// each entry is a folder.
func (o *Orchestrator) commitPaths(job transfer.Job, res *transfer.Result) []commitPath {
	switch {
	case !job.Recursive && job.Category == media.TV:
		return []commitPath{{path: job.LocalPath}}
	case !job.Recursive && job.Category == media.Movie:
		// A movie file inside a release folder belongs to that folder's job.
		if o.layout.IsLoose(job.LocalPath) {
			return []commitPath{{path: job.LocalPath}}
		}
		return nil
	case job.Recursive && job.Category == media.Movie:
		return []commitPath{{path: job.LocalPath, folder: true}}
	case job.Recursive && job.Category == media.TV:
		// The season folder stays for episodes still to come.
		paths := make([]commitPath, 0, len(res.Files))
		for _, f := range res.Files {
			paths = append(paths, commitPath{path: f.Local})
		}
		return paths
	}
	panic(fmt.Sprintf("pipeline: unhandled category %v", job.Category))
}

type commitPath struct {
	path   string
	folder bool
}

// commit applies the cleanup policy and reports whether anything was trashed.
func (o *Orchestrator) commit(ctx context.Context, log *slog.Logger, job transfer.Job, res *transfer.Result) (bool, error) {
	paths := o.commitPaths(job, res)
	if len(paths) == 0 {
		log.Info("local copy retained, enclosing folder owns cleanup")
		return false, nil
	}

	var trashed []string
	failed := 0
	for _, p := range paths {
		var ok bool
		if p.folder {
			ok = o.cleaner.DeleteFolder(p.path)
		} else {
			ok = o.cleaner.DeleteFile(p.path)
		}
		if ok {
			trashed = append(trashed, p.path)
			continue
		}
		failed++
		o.publish(ctx, &events.CleanupFailed{
			BaseEvent: events.NewBaseEvent(events.EventCleanupFailed, job.ID),
			Path:      p.path,
		})
	}

	if len(trashed) > 0 {
		o.publish(ctx, &events.CleanupCompleted{
			BaseEvent: events.NewBaseEvent(events.EventCleanupCompleted, job.ID),
			Paths:     trashed,
		})
	}
	if failed > 0 {
		log.Warn("some local content was not trashed", "trashed", len(trashed), "failed", failed)
		return len(trashed) > 0, fmt.Errorf("%w: %d of %d paths", ErrCleanupIncomplete, failed, len(paths))
	}
	return true, nil
}

func (o *Orchestrator) succeeded(ctx context.Context, log *slog.Logger, job transfer.Job, res *transfer.Result, took time.Duration) {
	if res.Copied() == 0 {
		log.Info("already present on remote", "files", len(res.Files))
		o.publish(ctx, &events.TransferSkipped{
			BaseEvent: events.NewBaseEvent(events.EventTransferSkipped, job.ID),
			Path:      job.LocalPath,
			Category:  job.Category.String(),
			Files:     len(res.Files),
		})
		return
	}

	targets := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		targets = append(targets, f.Target)
	}
	log.Info("transfer succeeded",
		"copied", res.Copied(),
		"skipped", res.Skipped(),
		"duration_ms", took.Milliseconds())
	o.publish(ctx, &events.TransferCompleted{
		BaseEvent:  events.NewBaseEvent(events.EventTransferCompleted, job.ID),
		Path:       job.LocalPath,
		Category:   job.Category.String(),
		Targets:    targets,
		Copied:     res.Copied(),
		Skipped:    res.Skipped(),
		DurationMs: took.Milliseconds(),
	})
}

func (o *Orchestrator) failed(ctx context.Context, log *slog.Logger, job transfer.Job, err error) {
	ev := &events.TransferFailed{
		BaseEvent: events.NewBaseEvent(events.EventTransferFailed, job.ID),
		Path:      job.LocalPath,
		Category:  job.Category.String(),
		Error:     err.Error(),
	}

	attrs := []any{"error", err, "state", Retained.String()}
	var terr *transfer.TransferError
	if errors.As(err, &terr) {
		ev.Target = terr.Target
		ev.ExitCode = terr.ExitCode
		ev.Tail = terr.Tail
		attrs = append(attrs, "target", terr.Target, "exit_code", terr.ExitCode)
		if diag := terr.Diagnostic(); diag != "" {
			attrs = append(attrs, "stderr", diag)
		}
	}
	log.Error("transfer failed, local data kept", attrs...)
	o.publish(ctx, ev)
}

func (o *Orchestrator) publish(ctx context.Context, e events.Event) {
	if o.bus == nil {
		return
	}
	if err := o.bus.Publish(ctx, e); err != nil {
		o.log.Error("failed to publish event", "type", e.EventType(), "error", err)
	}
}
