package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vmunix/arrpush/internal/cleanup"
	"github.com/vmunix/arrpush/internal/config"
	"github.com/vmunix/arrpush/internal/events"
	"github.com/vmunix/arrpush/internal/layout"
	"github.com/vmunix/arrpush/internal/media"
	"github.com/vmunix/arrpush/internal/pipeline"
	"github.com/vmunix/arrpush/internal/preflight"
	"github.com/vmunix/arrpush/internal/remote"
	"github.com/vmunix/arrpush/internal/transfer"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig resolves the config path from --config or discovery and loads it.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return nil, fmt.Errorf("%w (run 'arrpush init' to create one)", err)
		}
		path = found
	}
	return config.Load(path)
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func newLayout(cfg *config.Config) layout.Layout {
	return layout.New(cfg.Watch.Root, cfg.Watch.MoviesDir, cfg.Watch.TVDir)
}

func newTargets(cfg *config.Config, l layout.Layout) transfer.Targets {
	return transfer.NewTargets(l, cfg.Remote.MoviesRoot, cfg.Remote.TVRoot)
}

func newRemote(cfg *config.Config) (*remote.Client, error) {
	return remote.NewClient(remote.Config{
		User:           cfg.Remote.User,
		Host:           cfg.Remote.Host,
		Port:           cfg.Remote.Port,
		IdentityFile:   cfg.Remote.IdentityFile,
		ConnectTimeout: cfg.Remote.ConnectTimeout,
		SSHBinary:      cfg.Remote.SSHBinary,
		SCPBinary:      cfg.Remote.SCPBinary,
		LegacySCP:      cfg.Remote.LegacySCP,
		Env:            remote.BuildEnv(cfg.Remote.Env, cfg.Remote.InheritEnv),
		TailLines:      cfg.Remote.TailLines,
	})
}

func preflightChecks(cfg *config.Config, client *remote.Client) preflight.Checks {
	return preflight.Checks{
		SSHBinary: cfg.Remote.SSHBinary,
		SCPBinary: cfg.Remote.SCPBinary,
		WatchRoot: cfg.Watch.Root,
		Remote:    client,
		Timeout:   cfg.Remote.ConnectTimeout,
	}
}

// verify runs preflight and prints the connectivity checklist on failure.
func verify(ctx context.Context, w io.Writer, cfg *config.Config, client *remote.Client) error {
	err := preflight.Verify(ctx, preflightChecks(cfg, client))
	var connErr *preflight.ConnectivityError
	if errors.As(err, &connErr) {
		fmt.Fprintf(w, "Cannot reach the media server at %s.\n\n", connErr.Address)
		for _, hint := range connErr.Hints() {
			fmt.Fprintf(w, "  - %s\n", hint)
		}
		fmt.Fprintln(w)
	}
	return err
}

// openHistory opens the event log when history is enabled. The returned
// close function is always safe to call.
func openHistory(cfg *config.Config, logger *slog.Logger) (*events.EventLog, func(), error) {
	if cfg.History.Path == "" {
		return nil, func() {}, nil
	}
	db, err := events.OpenDB(cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("history: %w", err)
	}
	log := events.NewEventLog(db)
	if cfg.History.Retention > 0 {
		if n, err := log.Prune(cfg.History.Retention); err != nil {
			logger.Warn("failed to prune history", "error", err)
		} else if n > 0 {
			logger.Debug("pruned history", "events", n)
		}
	}
	return log, closeDB(db, logger), nil
}

func closeDB(db *sql.DB, logger *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close history", "error", err)
		}
	}
}

// pushStack is everything needed to run paths through the pipeline.
type pushStack struct {
	layout layout.Layout
	remote *remote.Client
	bus    *events.Bus
	orch   *pipeline.Orchestrator
	close  func()
}

// newPushStack builds the transfer and cleanup chain on top of a shared bus.
func newPushStack(cfg *config.Config, client *remote.Client, logger *slog.Logger) (*pushStack, error) {
	l := newLayout(cfg)
	eventLog, closeHistory, err := openHistory(cfg, logger)
	if err != nil {
		return nil, err
	}
	bus := events.NewBus(eventLog, logger.With("component", "bus"))

	engine := transfer.New(client, newTargets(cfg, l), transfer.Config{
		VideoExts:   media.NewExtSet(cfg.Media.VideoExtensions...),
		SidecarExts: media.NewExtSet(cfg.Media.SidecarExtensions...),
	}, transfer.NewConsoleObserver(os.Stderr, logger.With("component", "progress")), logger.With("component", "transfer"))
	cleaner := cleanup.New(l, cleanup.SystemTrash, logger.With("component", "cleanup"))
	orch := pipeline.NewOrchestrator(l, engine, cleaner, bus, logger.With("component", "pipeline"))

	return &pushStack{
		layout: l,
		remote: client,
		bus:    bus,
		orch:   orch,
		close: func() {
			_ = bus.Close()
			closeHistory()
		},
	}, nil
}

// signalContext is cancelled on the first SIGINT or SIGTERM. A second signal
// exits immediately; a copy in flight is abandoned.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, finishing current job", "signal", sig.String())
			cancel()
		case <-done:
			return
		}
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, exiting now", "signal", sig.String())
			os.Exit(130)
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		close(done)
		cancel()
	}
}
