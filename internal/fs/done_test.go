package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonePath(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "suffix goes before the extension", path: "/trip/IMG_0001.JPG", expected: "/trip/IMG_0001_adjusted.JPG"},
		{name: "only the last extension counts", path: "/trip/clip.v2.mp4", expected: "/trip/clip.v2_adjusted.mp4"},
		{name: "relative paths stay relative", path: "a.jpg", expected: "a_adjusted.jpg"},
	}

	for _, c := range cases {
		assert.Equal(t, filepath.FromSlash(c.expected), DonePath(filepath.FromSlash(c.path)), c.name)
	}
}

func TestMarkDone(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	touch(t, src)

	done, err := MarkDone(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a_adjusted.jpg"), done)
	assert.NoFileExists(t, src)
	assert.FileExists(t, done)
	assert.True(t, IsDone(filepath.Base(done)))
}

func TestMarkDoneNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	touch(t, src)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_adjusted.jpg"), []byte("keep me"), 0o644))

	_, err := MarkDone(src)
	require.ErrorIs(t, err, os.ErrExist)

	b, err := os.ReadFile(filepath.Join(dir, "a_adjusted.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(b))
	assert.FileExists(t, src)
}

func TestMarkDoneRenameFailure(t *testing.T) {
	old := renameFunc
	renameFunc = func(string, string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	src := filepath.Join(t.TempDir(), "a.jpg")
	touch(t, src)

	_, err := MarkDone(src)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestSetFileTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp4")
	touch(t, path)
	when := time.Date(2021, 2, 10, 17, 0, 0, 0, time.UTC)

	require.NoError(t, SetFileTimes(path, when))

	ft, err := StatTimes(path)
	require.NoError(t, err)
	assert.True(t, when.Equal(ft.ModTime), "Expected %v but got %v instead", when, ft.ModTime)
}
