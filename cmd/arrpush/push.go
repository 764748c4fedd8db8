package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrpush/internal/pipeline"
	"github.com/vmunix/arrpush/internal/watcher"
)

var pushCmd = &cobra.Command{
	Use:   "push <path>...",
	Short: "Push paths under the watch root once",
	Long: `Runs each path through classification, transfer and cleanup exactly as
'arrpush run' would, then prints a summary. Use it to retry a job that
failed instead of touching the files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

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

	var rows [][]string
	failed := 0
	for _, arg := range args {
		if ctx.Err() != nil {
			break
		}
		path, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		e := watcher.Event{Path: path, Kind: watcher.Created}
		if info, err := os.Stat(path); err == nil {
			e.IsDir = info.IsDir()
		}

		out := stack.orch.Handle(ctx, e)
		rows = append(rows, outcomeRow(arg, out))
		if out.Err != nil || out.State == pipeline.Ignored {
			failed++
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Path", "Category", "State", "Copied", "Skipped", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	if failed > 0 {
		return fmt.Errorf("%d of %d paths not pushed", failed, len(args))
	}
	return nil
}

func outcomeRow(path string, out pipeline.Outcome) []string {
	copied, skipped := "-", "-"
	if out.Result != nil {
		copied = strconv.Itoa(out.Result.Copied())
		skipped = strconv.Itoa(out.Result.Skipped())
	}
	category := "-"
	if out.State != pipeline.Ignored {
		category = out.Category.String()
	}
	errText := ""
	if out.Err != nil {
		errText = out.Err.Error()
	}
	return []string{path, category, out.State.String(), copied, skipped, errText}
}
