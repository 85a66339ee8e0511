// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "single key",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "drive-api-key", "AIzaSyTestKey123\n")
				return dir
			},
			want: map[string]string{"drive-api-key": "AIzaSyTestKey123"},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
		{
			name: "whitespace-only value skipped",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "drive-api-key", "  \n\t\n")
				return dir
			},
			want: map[string]string{},
		},
		{
			name: "dotfiles and subdirectories skipped",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitignore", "*")
				writeFile(t, dir, "drive-api-key", "key-value")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{"drive-api-key": "key-value"},
		},
		{
			name: "multiple keys",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "drive-api-key", "first")
				writeFile(t, dir, "other-key", "second\n")
				return dir
			},
			want: map[string]string{"drive-api-key": "first", "other-key": "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}

	dir := t.TempDir()
	writeFile(t, dir, "drive-api-key", "readable")
	unreadable := filepath.Join(dir, "locked-key")
	require.NoError(t, os.WriteFile(unreadable, []byte("secret"), 0o600))
	require.NoError(t, os.Chmod(unreadable, 0o000))
	t.Cleanup(func() { os.Chmod(unreadable, 0o600) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"drive-api-key": "readable"}, got)
}
