package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	require.Equal(t, "/custom/data/flowerlove", DefaultDataDir())
}

func TestDefaultDataDirNoHome(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("USERPROFILE", "")
	require.Equal(t, "./data", DefaultDataDir())
}

func TestDefaultDataDirPerUserLocations(t *testing.T) {
	tests := []struct {
		name   string
		mkdir  string
		expect []string
	}{
		{name: "linux", mkdir: ".local", expect: []string{".local", "share", "flowerlove"}},
		{name: "macos", mkdir: "Library", expect: []string{"Library", "Application Support", "flowerlove"}},
		{name: "windows", mkdir: "AppData", expect: []string{"AppData", "Local", "flowerlove"}},
		{name: "dotdir", expect: []string{".flowerlove"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := t.TempDir()
			if tt.mkdir != "" {
				require.NoError(t, os.Mkdir(filepath.Join(home, tt.mkdir), 0o755))
			}
			t.Setenv("HOME", home)
			t.Setenv("USERPROFILE", home)
			t.Setenv("XDG_DATA_HOME", "")

			want := filepath.Join(append([]string{home}, tt.expect...)...)
			require.Equal(t, want, DefaultDataDir())
			require.Equal(t, DefaultDataDir(), DefaultDataDir())
		})
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	require.True(t, isDir(dir))
	require.False(t, isDir(file))
	require.False(t, isDir(filepath.Join(dir, "missing")))
}
