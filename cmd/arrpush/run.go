package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrpush/internal/pipeline"
	"github.com/vmunix/arrpush/internal/watcher"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the transfer folder and push new media",
	Long: `Watches the transfer folder until interrupted. Each new file or folder
is classified, copied to the media server and moved to the trash.

The first interrupt stops watching and lets the current job finish.
A second interrupt exits immediately.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	l := newLayout(cfg)
	if err := l.Ensure(logger.With("component", "layout")); err != nil {
		return fmt.Errorf("watch root: %w", err)
	}

	client, err := newRemote(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(logger)
	defer stop()

	if err := verify(ctx, cmd.ErrOrStderr(), cfg, client); err != nil {
		return err
	}

	stack, err := newPushStack(cfg, client, logger)
	if err != nil {
		return err
	}
	defer stack.close()

	queue := pipeline.NewQueue()
	w := watcher.New(stack.layout, watcher.Config{
		Settle:    cfg.Watch.Settle,
		SkipFiles: cfg.Watch.SkipFiles,
	}, queue, logger)
	runner := pipeline.NewRunner(w, queue, stack.orch, stack.bus, pipeline.Config{
		LockFile: cfg.Daemon.LockFile,
	}, logger.With("component", "runner"))

	logger.Info("arrpush started",
		"version", version,
		"root", stack.layout.Root(),
		"remote", client.Address(),
		"movies_root", cfg.Remote.MoviesRoot,
		"tv_root", cfg.Remote.TVRoot,
	)
	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Info("arrpush stopped")
	return nil
}
