package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tagfarm/pkg/filesystem"
)

func TestOSFilesystemSymlinks(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()

	target := filepath.Join(dir, "target.mp4")
	link := filepath.Join(dir, "link.mp4")
	require.NoError(t, fsys.WriteFile(target, []byte("x"), 0644))
	require.NoError(t, fsys.Symlink(target, link))

	got, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	// Lstat sees the link, Stat follows to the file.
	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	info, err = fsys.Stat(link)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink)

	// Rename over an existing link swaps it.
	other := filepath.Join(dir, "other.mp4")
	require.NoError(t, fsys.Symlink("/elsewhere", other))
	require.NoError(t, fsys.Rename(other, link))
	got, err = fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", got)
}

func TestOSFilesystemDirs(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()

	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, fsys.MkdirAll(nested, 0755))
	require.NoError(t, fsys.WriteFile(filepath.Join(nested, "f.txt"), []byte("x"), 0644))

	entries, err := fsys.ReadDir(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())

	require.NoError(t, fsys.Remove(filepath.Join(nested, "f.txt")))
	require.NoError(t, fsys.RemoveAll(filepath.Join(dir, "a")))
	_, err = fsys.Stat(filepath.Join(dir, "a"))
	assert.True(t, os.IsNotExist(err))
}

func TestAferoFilesystem(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewMemMapFs())

	require.NoError(t, fsys.MkdirAll("/farm/tags", 0755))
	require.NoError(t, fsys.WriteFile("/farm/tags/f.txt", []byte("hello"), 0644))

	content, err := fsys.ReadFile("/farm/tags/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	entries, err := fsys.ReadDir("/farm/tags")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.txt", entries[0].Name())

	// MemMapFs has no native symlinks; the emulation still round-trips.
	require.NoError(t, fsys.Symlink("/media/a.mp4", "/farm/tags/link.mp4"))
	target, err := fsys.Readlink("/farm/tags/link.mp4")
	require.NoError(t, err)
	assert.Equal(t, "/media/a.mp4", target)

	require.NoError(t, fsys.Remove("/farm/tags/link.mp4"))
	_, err = fsys.Stat("/farm/tags/link.mp4")
	assert.Error(t, err)
}

func TestAferoFilesystemOverOS(t *testing.T) {
	fsys := filesystem.NewAferoFS(afero.NewOsFs())
	dir := t.TempDir()

	target := filepath.Join(dir, "target.mp4")
	link := filepath.Join(dir, "link.mp4")
	require.NoError(t, fsys.WriteFile(target, []byte("x"), 0644))
	require.NoError(t, fsys.Symlink(target, link))

	got, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
}
