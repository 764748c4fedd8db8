package config

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	// Watch validation
	if c.Watch.Root == "" {
		errs = append(errs, "watch.root: required")
	}
	for key, name := range map[string]string{"watch.movies_dir": c.Watch.MoviesDir, "watch.tv_dir": c.Watch.TVDir} {
		if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			errs = append(errs, fmt.Sprintf("%s: must be a single folder name, got %q", key, name))
		}
	}
	if c.Watch.MoviesDir != "" && c.Watch.MoviesDir == c.Watch.TVDir {
		errs = append(errs, "watch.tv_dir: must differ from watch.movies_dir")
	}
	if c.Watch.Settle < 0 {
		errs = append(errs, fmt.Sprintf("watch.settle: must not be negative, got %s", c.Watch.Settle))
	}

	// Media validation
	if len(c.Media.VideoExtensions) == 0 {
		errs = append(errs, "media.video_extensions: at least one extension required")
	}
	video := make(map[string]bool)
	for _, ext := range c.Media.VideoExtensions {
		video[normalizeExt(ext)] = true
	}
	for _, ext := range c.Media.SidecarExtensions {
		if video[normalizeExt(ext)] {
			errs = append(errs, fmt.Sprintf("media.sidecar_extensions: %q is also a video extension", ext))
		}
	}

	// Remote validation
	if c.Remote.User == "" {
		errs = append(errs, "remote.user: required")
	}
	if c.Remote.Host == "" {
		errs = append(errs, "remote.host: required")
	}
	if c.Remote.Port < 1 || c.Remote.Port > 65535 {
		errs = append(errs, fmt.Sprintf("remote.port: must be between 1 and 65535, got %d", c.Remote.Port))
	}
	for key, root := range map[string]string{"remote.movies_root": c.Remote.MoviesRoot, "remote.tv_root": c.Remote.TVRoot} {
		if root == "" {
			errs = append(errs, key+": required")
		} else if !path.IsAbs(root) {
			errs = append(errs, fmt.Sprintf("%s: must be an absolute remote path, got %q", key, root))
		}
	}
	if c.Remote.ConnectTimeout < 0 {
		errs = append(errs, fmt.Sprintf("remote.connect_timeout: must not be negative, got %s", c.Remote.ConnectTimeout))
	}
	if c.Remote.TailLines < 0 {
		errs = append(errs, fmt.Sprintf("remote.tail_lines: must not be negative, got %d", c.Remote.TailLines))
	}
	if c.History.Retention < 0 {
		errs = append(errs, fmt.Sprintf("history.retention: must not be negative, got %s", c.History.Retention))
	}
	if c.Remote.IdentityFile != "" {
		if _, err := os.Stat(c.Remote.IdentityFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("remote.identity_file: file %q does not exist", c.Remote.IdentityFile))
		}
	}

	sort.Strings(errs)
	return errs
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
