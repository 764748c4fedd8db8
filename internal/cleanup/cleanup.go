// Package cleanup moves transferred local files and folders to the OS trash.
package cleanup

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Bios-Marcel/wastebasket/v2"

	"github.com/vmunix/arrpush/internal/layout"
)

var (
	// ErrOutsideRoot is returned when a path is not strictly under the watch root.
	ErrOutsideRoot = errors.New("refusing to trash path outside watch root")

	// ErrProtected is returned for the watch root and the reserved subtree roots.
	ErrProtected = errors.New("refusing to trash protected directory")

	// ErrWrongKind is returned when a file was expected and a folder found, or
	// the other way around.
	ErrWrongKind = errors.New("unexpected file type")
)

// Trasher moves paths to the trash.
type Trasher interface {
	Trash(paths ...string) error
}

// TrasherFunc adapts a function to Trasher.
type TrasherFunc func(paths ...string) error

func (f TrasherFunc) Trash(paths ...string) error { return f(paths...) }

// SystemTrash is the desktop trash of the current user.
var SystemTrash Trasher = TrasherFunc(wastebasket.Trash)

// Cleaner trashes local content under a watch root. It never removes
// anything permanently.
type Cleaner struct {
	layout  layout.Layout
	trasher Trasher
	log     *slog.Logger
}

// New creates a Cleaner. A nil trasher uses SystemTrash.
func New(l layout.Layout, trasher Trasher, logger *slog.Logger) *Cleaner {
	if trasher == nil {
		trasher = SystemTrash
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{layout: l, trasher: trasher, log: logger}
}

// DeleteFile trashes a single file. It reports whether the file was trashed;
// failures are logged and never returned.
func (c *Cleaner) DeleteFile(path string) bool {
	return c.trash(path, false)
}

// DeleteFolder trashes a folder and everything under it.
func (c *Cleaner) DeleteFolder(path string) bool {
	return c.trash(path, true)
}

func (c *Cleaner) trash(path string, dir bool) bool {
	abs, err := c.check(path, dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Warn("nothing to trash, path missing", "path", path)
		} else {
			c.log.Warn("not trashing", "path", path, "error", err)
		}
		return false
	}

	if err := c.trasher.Trash(abs); err != nil {
		c.log.Error("failed to move to trash", "path", abs, "error", err)
		return false
	}
	c.log.Info("moved to trash", "path", abs, "folder", dir)
	return true
}

// check resolves path and enforces the root-prefix safety rules.
func (c *Cleaner) check(path string, dir bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)

	if c.layout.IsReservedRoot(abs) {
		return "", fmt.Errorf("%w: %s", ErrProtected, abs)
	}
	if !c.layout.Contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, abs)
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() != dir {
		want := "file"
		if dir {
			want = "folder"
		}
		return "", fmt.Errorf("%w: want %s", ErrWrongKind, want)
	}
	return abs, nil
}
