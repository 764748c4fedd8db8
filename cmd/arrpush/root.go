package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "arrpush",
	Short: "Push finished downloads to a media server",
	Long: `arrpush - push finished downloads to a media server

Watches a transfer folder, sorts new files and folders into movies or
TV shows, copies them to the media server over scp and moves the local
copy to the trash once the server has it.

Run 'arrpush init' to write a starter config, then 'arrpush run'.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "arrpush %s\n", version)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level from the config file")

	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("arrpush {{.Version}}\n")
}
