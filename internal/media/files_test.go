package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestNewExtSet(t *testing.T) {
	set := NewExtSet("MKV", ".mp4", " .Avi ", "")
	assert.Equal(t, []string{".avi", ".mkv", ".mp4"}, set.Sorted())
	assert.True(t, set.Has("/a/b/Movie.MKV"))
	assert.True(t, set.Has("clip.avi"))
	assert.False(t, set.Has("movie.srt"))
	assert.False(t, set.Has("noext"))
}

func TestFindVideos(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.mkv"))
	touch(t, filepath.Join(root, "a.mp4"))
	touch(t, filepath.Join(root, "a.srt"))
	touch(t, filepath.Join(root, "Extras", "featurette.mkv"))
	touch(t, filepath.Join(root, ".hidden.mkv"))
	touch(t, filepath.Join(root, ".cache", "x.mkv"))

	videos, err := FindVideos(root, NewExtSet(".mkv", ".mp4"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Extras", "featurette.mkv"),
		filepath.Join(root, "a.mp4"),
		filepath.Join(root, "b.mkv"),
	}, videos)
}

func TestFindVideos_NoneFound(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "movie.srt"))

	videos, err := FindVideos(root, NewExtSet(".mkv"))
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestFindVideos_MissingRoot(t *testing.T) {
	_, err := FindVideos(filepath.Join(t.TempDir(), "gone"), NewExtSet(".mkv"))
	assert.Error(t, err)
}

func TestSidecarsFor(t *testing.T) {
	root := t.TempDir()
	video := filepath.Join(root, "movie.mkv")
	touch(t, video)
	touch(t, filepath.Join(root, "movie.srt"))
	touch(t, filepath.Join(root, "Movie.en.SRT"))
	touch(t, filepath.Join(root, "movie.nfo"))
	touch(t, filepath.Join(root, "movies.srt"))
	touch(t, filepath.Join(root, "other.srt"))

	sidecars, err := SidecarsFor(video, NewExtSet(".srt"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "Movie.en.SRT"),
		filepath.Join(root, "movie.srt"),
	}, sidecars)
}

func TestSidecarsFor_EmptySet(t *testing.T) {
	sidecars, err := SidecarsFor("/nowhere/movie.mkv", nil)
	require.NoError(t, err)
	assert.Nil(t, sidecars)
}
