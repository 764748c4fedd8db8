package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrpush/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without contacting the media server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	fmt.Fprintf(w, "Found %d problem(s):\n", len(e.Problems()))
	for _, p := range e.Problems() {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	fmt.Fprintln(w)
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Watch root:  %s (movies: %s, tv: %s)\n", cfg.Watch.Root, cfg.Watch.MoviesDir, cfg.Watch.TVDir)
	fmt.Fprintf(w, "  Settle:      %s\n", cfg.Watch.Settle)
	fmt.Fprintf(w, "  Remote:      %s@%s:%d\n", cfg.Remote.User, cfg.Remote.Host, cfg.Remote.Port)
	fmt.Fprintf(w, "  Movies to:   %s\n", cfg.Remote.MoviesRoot)
	fmt.Fprintf(w, "  TV to:       %s\n", cfg.Remote.TVRoot)
	fmt.Fprintf(w, "  Video exts:  %s\n", strings.Join(cfg.Media.VideoExtensions, " "))
	fmt.Fprintf(w, "  Sidecars:    %s\n", strings.Join(cfg.Media.SidecarExtensions, " "))

	if cfg.History.Path != "" {
		fmt.Fprintf(w, "  History:     %s\n", cfg.History.Path)
	} else {
		fmt.Fprintln(w, "  History:     disabled")
	}
}
