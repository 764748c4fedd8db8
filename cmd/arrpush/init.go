package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrpush/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Long:  "Writes an annotated config.toml. Without a path it goes to $XDG_CONFIG_HOME/arrpush/config.toml.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if err := config.WriteDefault(path, initForce); err != nil {
		if errors.Is(err, config.ErrExists) {
			return fmt.Errorf("%w, use --force to overwrite", err)
		}
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n\nEdit the [remote] section, then run 'arrpush check'.\n", path)
	return nil
}
