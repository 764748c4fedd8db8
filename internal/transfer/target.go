package transfer

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/vmunix/arrpush/internal/layout"
	"github.com/vmunix/arrpush/internal/media"
)

// Targets maps local paths to their destination on the media server.
type Targets struct {
	layout    layout.Layout
	movieRoot string
	tvRoot    string
}

// NewTargets creates a resolver for the given layout and remote library roots.
func NewTargets(l layout.Layout, movieRoot, tvRoot string) Targets {
	return Targets{
		layout:    l,
		movieRoot: path.Clean(movieRoot),
		tvRoot:    path.Clean(tvRoot),
	}
}

// Resolve computes the remote target of a local file.
//
// TV content keeps its path relative to the TV subtree (or to the watch root
// when it was dropped elsewhere). Movie content is flattened to
// "containing-folder/filename"; a file whose folder is the watch root or the
// Movies subtree root lands directly in the movie root.
//
// The result depends only on its inputs and the configured roots.
func (t Targets) Resolve(local string, c media.Category) (string, error) {
	local = filepath.Clean(local)
	if _, err := t.layout.Rel(local); err != nil {
		return "", err
	}

	switch c {
	case media.TV:
		base := t.layout.Root()
		if reserved, ok := t.layout.ReservedCategory(local); ok && reserved == media.TV {
			base = t.layout.TVPath()
		}
		rel, err := filepath.Rel(base, local)
		if err != nil {
			return "", fmt.Errorf("relative path: %w", err)
		}
		return path.Join(t.tvRoot, filepath.ToSlash(rel)), nil
	case media.Movie:
		name := filepath.Base(local)
		parent := filepath.Dir(local)
		if t.layout.IsReservedRoot(parent) {
			return path.Join(t.movieRoot, name), nil
		}
		return path.Join(t.movieRoot, filepath.Base(parent), name), nil
	}
	return "", fmt.Errorf("unhandled category %v", c)
}
