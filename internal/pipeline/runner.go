package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/arrpush/internal/events"
)

// Source produces events into the queue until ctx is done.
type Source interface {
	Run(ctx context.Context) error
}

// Config for the runner.
type Config struct {
	LockFile string // empty disables the single-instance lock
}

// Runner wires the watch source, the queue and one worker.
type Runner struct {
	source Source
	queue  *Queue
	orch   *Orchestrator
	bus    *events.Bus
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner. bus may be nil, in which case no session
// summary is collected.
func NewRunner(source Source, queue *Queue, orch *Orchestrator, bus *events.Bus, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source: source,
		queue:  queue,
		orch:   orch,
		bus:    bus,
		config: cfg,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled or a component fails. On cancellation no
// new events are accepted, and the job in flight runs to completion.
func (r *Runner) Run(ctx context.Context) error {
	unlock, err := r.lock()
	if err != nil {
		return err
	}
	defer unlock()

	// Stats outlives the errgroup so events from a draining job are counted.
	stats := NewStats(r.bus, r.logger.With("component", "stats"))
	statsCtx, stopStats := context.WithCancel(context.WithoutCancel(ctx))
	statsDone := make(chan struct{})
	go func() {
		defer close(statsDone)
		_ = stats.Start(statsCtx)
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.source.Run(ctx)
	})
	g.Go(func() error {
		return r.work(ctx)
	})

	err = g.Wait()
	stopStats()
	<-statsDone
	stats.LogSummary()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// work is the single consumer. Jobs run detached from ctx so shutdown waits
// for the current one instead of abandoning a half-copied file.
func (r *Runner) work(ctx context.Context) error {
	for {
		e, err := r.queue.Pop(ctx)
		if err != nil {
			if pending := r.queue.Len(); pending > 0 {
				r.logger.Info("shutting down with queued events", "pending", pending)
			}
			return nil
		}
		r.orch.Handle(context.WithoutCancel(ctx), e)
	}
}

func (r *Runner) lock() (func(), error) {
	if r.config.LockFile == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.config.LockFile), 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	fl := flock.New(r.config.LockFile)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", r.config.LockFile, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, r.config.LockFile)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			r.logger.Warn("failed to release lock", "path", r.config.LockFile, "error", err)
		}
	}, nil
}
