package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrpush/internal/preflight"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check local tools, the watch root and the media server",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := newRemote(cfg)
	if err != nil {
		return err
	}

	results := preflight.RunAll(context.Background(), preflightChecks(cfg, client))

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
			failed++
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}
