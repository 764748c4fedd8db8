package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrpush/internal/config"
	"github.com/vmunix/arrpush/internal/media"
	"github.com/vmunix/arrpush/internal/pipeline"
	"github.com/vmunix/arrpush/internal/transfer"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <path>...",
	Short: "Show how paths would be sorted and where they would land",
	Long: `Prints the category and remote target for each path without touching
the media server. Folders list every file a push would send.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rows, err := classifyRows(cfg, args)
	if err != nil {
		return err
	}
	return printClassification(cmd.OutOrStdout(), rows)
}

func printClassification(w io.Writer, rows [][]string) error {
	_, err := fmt.Fprintln(w, renderTable([]string{"Path", "Category", "Target"}, rows, nil))
	return err
}

// classifyRows resolves each path the way the orchestrator would.
func classifyRows(cfg *config.Config, args []string) ([][]string, error) {
	l := newLayout(cfg)
	targets := newTargets(cfg, l)
	videoExts := media.NewExtSet(cfg.Media.VideoExtensions...)
	sidecarExts := media.NewExtSet(cfg.Media.SidecarExtensions...)

	var rows [][]string
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			rows = append(rows, []string{arg, "-", err.Error()})
			continue
		}
		if !l.Contains(path) || l.IsReservedRoot(path) {
			rows = append(rows, []string{arg, "-", "not under the watch root"})
			continue
		}
		if info.IsDir() && l.IsReservedName(filepath.Base(path)) {
			rows = append(rows, []string{arg, "-", "folder named like a reserved subtree"})
			continue
		}

		c := pipeline.Classify(l, path, info.IsDir())
		if !info.IsDir() {
			rows = append(rows, []string{arg, c.String(), resolve(targets, path, c)})
			continue
		}

		files, err := folderFiles(path, videoExts, sidecarExts)
		if err != nil {
			rows = append(rows, []string{arg, c.String(), err.Error()})
			continue
		}
		for _, f := range files {
			rows = append(rows, []string{f, c.String(), resolve(targets, f, c)})
		}
	}
	return rows, nil
}

// folderFiles lists the videos under dir, each followed by its sidecars.
func folderFiles(dir string, videoExts, sidecarExts media.ExtSet) ([]string, error) {
	videos, err := media.FindVideos(dir, videoExts)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, transfer.ErrNoVideoFiles
	}
	seen := make(map[string]bool)
	var files []string
	for _, v := range videos {
		sidecars, err := media.SidecarsFor(v, sidecarExts)
		if err != nil {
			return nil, err
		}
		for _, f := range append([]string{v}, sidecars...) {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

func resolve(targets transfer.Targets, path string, c media.Category) string {
	target, err := targets.Resolve(path, c)
	if err != nil {
		return err.Error()
	}
	return target
}
