package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExtSet is a set of lower-cased file extensions including the leading dot.
type ExtSet map[string]struct{}

// NewExtSet normalizes exts ("MKV", ".mkv", " .Mkv ") into an ExtSet.
func NewExtSet(exts ...string) ExtSet {
	set := make(ExtSet, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

// Has reports whether path's extension is in the set.
func (s ExtSet) Has(path string) bool {
	_, ok := s[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Sorted returns the extensions in lexical order.
func (s ExtSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// IsHidden reports whether a base name is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// FindVideos finds all video files under root (recursive), in lexical
// traversal order. Hidden files and directories are skipped.
func FindVideos(root string, videoExts ExtSet) ([]string, error) {
	var videos []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if videoExts.Has(path) {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	return videos, nil
}

// SidecarsFor returns the companion files of video that live next to it:
// files with a sidecar extension whose name is the video's stem followed by
// a dot (movie.srt, movie.en.srt for movie.mkv). Results are sorted.
func SidecarsFor(video string, sidecarExts ExtSet) ([]string, error) {
	if len(sidecarExts) == 0 {
		return nil, nil
	}
	dir := filepath.Dir(video)
	base := filepath.Base(video)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base))) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var sidecars []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == base || IsHidden(name) {
			continue
		}
		if !sidecarExts.Has(name) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), stem) {
			sidecars = append(sidecars, filepath.Join(dir, name))
		}
	}
	return sidecars, nil
}
