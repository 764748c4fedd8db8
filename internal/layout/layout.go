// Package layout describes the local watch root and its two reserved
// category subtrees.
package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/arrpush/internal/media"
)

// Default reserved subtree names.
const (
	DefaultMoviesDir = "Movies"
	DefaultTVDir     = "TV shows"
)

// ErrOutsideRoot indicates a path that does not live under the watch root.
var ErrOutsideRoot = errors.New("path outside watch root")

// Layout is the watch root with its reserved Movies and TV subtrees.
type Layout struct {
	root      string
	moviesDir string
	tvDir     string
}

// New creates a Layout. Empty subtree names use the defaults.
func New(root, moviesDir, tvDir string) Layout {
	if moviesDir == "" {
		moviesDir = DefaultMoviesDir
	}
	if tvDir == "" {
		tvDir = DefaultTVDir
	}
	return Layout{
		root:      filepath.Clean(root),
		moviesDir: moviesDir,
		tvDir:     tvDir,
	}
}

// Root returns the watch root.
func (l Layout) Root() string { return l.root }

// MoviesPath returns the absolute path of the Movies subtree.
func (l Layout) MoviesPath() string { return filepath.Join(l.root, l.moviesDir) }

// TVPath returns the absolute path of the TV subtree.
func (l Layout) TVPath() string { return filepath.Join(l.root, l.tvDir) }

// IsReservedName reports whether name is one of the reserved subtree names.
func (l Layout) IsReservedName(name string) bool {
	return name == l.moviesDir || name == l.tvDir
}

// IsReservedRoot reports whether path is the watch root or one of the
// reserved subtree roots.
func (l Layout) IsReservedRoot(path string) bool {
	path = filepath.Clean(path)
	return path == l.root || path == l.MoviesPath() || path == l.TVPath()
}

// ReservedCategory returns the category implied by membership of a
// reserved subtree. The subtree roots themselves are not members.
func (l Layout) ReservedCategory(path string) (media.Category, bool) {
	path = filepath.Clean(path)
	switch {
	case within(path, l.TVPath()):
		return media.TV, true
	case within(path, l.MoviesPath()):
		return media.Movie, true
	default:
		return media.Movie, false
	}
}

// IsLoose reports whether path sits directly in the watch root or directly
// in one of the reserved subtree roots, as opposed to inside a release folder.
func (l Layout) IsLoose(path string) bool {
	return l.IsReservedRoot(filepath.Dir(filepath.Clean(path)))
}

// Rel returns path relative to the watch root.
// Returns ErrOutsideRoot if path escapes the root.
func (l Layout) Rel(path string) (string, error) {
	path = filepath.Clean(path)
	if !within(path, l.root) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return filepath.Rel(l.root, path)
}

// Contains reports whether path lives strictly under the watch root.
func (l Layout) Contains(path string) bool {
	return within(filepath.Clean(path), l.root)
}

// Ensure creates the watch root and both reserved subtrees if missing.
func (l Layout) Ensure(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{l.root, l.MoviesPath(), l.TVPath()} {
		if _, err := os.Stat(dir); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		logger.Info("created directory", "path", dir)
	}
	return nil
}

// within reports whether path is strictly below root.
// Both paths must already be clean.
func within(path, root string) bool {
	return path != root && strings.HasPrefix(path, root+string(filepath.Separator))
}
