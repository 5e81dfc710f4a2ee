package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/tagfarm/pkg/errors"
	"github.com/arthur-debert/tagfarm/pkg/paths"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestFindConfigExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x: 1"), 0644))

	got, err := paths.FindConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestFindConfigExplicitMissing(t *testing.T) {
	_, err := paths.FindConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigLoad))
}

func TestFindConfigCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tagfarm.yaml"), []byte("x: 1"), 0644))
	chdir(t, dir)

	got, err := paths.FindConfig("")
	require.NoError(t, err)
	assert.Equal(t, "tagfarm.yaml", got)
}

func TestFindConfigNoneFound(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := paths.FindConfig("")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigLoad))
	assert.Contains(t, err.Error(), "tagfarm.yaml")
}

func TestDefaultConfigPath(t *testing.T) {
	assert.Equal(t, "tagfarm.yaml", paths.DefaultConfigPath())
}

func TestLogFilePath(t *testing.T) {
	path := paths.LogFilePath()
	assert.Equal(t, "tagfarm.log", filepath.Base(path))
	assert.Contains(t, path, "tagfarm")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/farm", filepath.Join(home, "farm")},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~user/farm", "~user/farm"}, // only the bare ~ form is expanded
	}
	for _, tt := range tests {
		got, err := paths.ExpandHome(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %s", tt.in)
	}
}
