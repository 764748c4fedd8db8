package media

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// episodeMarkers are substrings that mark a file name as a TV episode.
var episodeMarkers = []string{"s0", "e0", "episode"}

// seasonEpisode matches S01E02 style markers that the plain substrings miss (S10E12).
var seasonEpisode = regexp.MustCompile(`s\d{1,2}e\d{1,3}`)

// folderMarkers are substrings that mark a folder name as TV content.
var folderMarkers = []string{"season", "episode"}

var fold = cases.Fold()

// ClassifyFile decides the category of a single file from its name.
// Names carrying an episode marker are TV. Everything else is a movie,
// whatever the extension: a video extension alone never implies TV.
func ClassifyFile(path string) Category {
	if hasEpisodeMarker(fold.String(filepath.Base(path))) {
		return TV
	}
	return Movie
}

// ClassifyFolder decides the category of a release folder from its name.
func ClassifyFolder(path string) Category {
	name := fold.String(filepath.Base(filepath.Clean(path)))
	for _, m := range folderMarkers {
		if strings.Contains(name, m) {
			return TV
		}
	}
	return Movie
}

func hasEpisodeMarker(name string) bool {
	for _, m := range episodeMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return seasonEpisode.MatchString(name)
}
