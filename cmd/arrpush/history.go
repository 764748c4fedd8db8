package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrpush/internal/events"
)

var (
	historyLimit int
	historyJob   string
	historySince time.Duration
	historyType  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded pipeline events",
	Long: `Prints events from the history database. By default the newest events
come first; --job and --since list oldest first.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of events to show")
	historyCmd.Flags().StringVar(&historyJob, "job", "", "Show every event of one job")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "Show events newer than this, e.g. 24h")
	historyCmd.Flags().StringVar(&historyType, "type", "", "Only show events of this type, e.g. transfer.failed")
	historyCmd.MarkFlagsMutuallyExclusive("job", "since")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.New("history is disabled: set [history] path in the config")
	}

	reg := events.DefaultRegistry()
	if historyType != "" && !slices.Contains(reg.Types(), historyType) {
		return fmt.Errorf("unknown event type %q, expected one of: %s", historyType, strings.Join(reg.Types(), ", "))
	}

	db, err := events.OpenDB(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	log := events.NewEventLog(db)

	var raw []events.RawEvent
	switch {
	case historyJob != "":
		raw, err = log.ForJob(historyJob)
	case historySince > 0:
		raw, err = log.Since(time.Now().Add(-historySince))
	default:
		raw, err = log.Recent(historyLimit)
	}
	if err != nil {
		return err
	}

	if historyType != "" {
		raw = slices.DeleteFunc(raw, func(r events.RawEvent) bool { return r.EventType != historyType })
	}
	return printHistory(cmd.OutOrStdout(), reg, raw)
}

func printHistory(w io.Writer, reg *events.Registry, raw []events.RawEvent) error {
	if len(raw) == 0 {
		_, err := fmt.Fprintln(w, "No events recorded.")
		return err
	}
	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		detail := r.Payload
		if e, err := reg.Unmarshal(r); err == nil {
			detail = events.Summary(e)
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.OccurredAt.Local().Format(time.DateTime),
			r.EventType,
			r.JobID,
			detail,
		})
	}
	_, err := fmt.Fprintln(w, renderTable(
		[]string{"ID", "Time", "Event", "Job", "Detail"},
		rows,
		[]columnAlignment{alignRight},
	))
	return err
}
