package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.toml"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "recite", "config.toml"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "recite", "config.toml"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[endpoint]
base_url = "https://scores.example.com/"

[audio]
input = "USB Mic"
fallback = "default"

[speech]
command = "spd-say -l {lang} -e"
language = "en-GB"

[passages]
level = "advanced"

[log]
level = "debug"
max_size_mb = 10
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, "https://scores.example.com/", loaded.Config.Endpoint.BaseURL)
	require.Equal(t, "USB Mic", loaded.Config.Audio.Input)
	require.Equal(t, []string{"spd-say", "-l", "{lang}", "-e"}, loaded.Config.Speech.Command.Argv)
	require.Equal(t, "en-GB", loaded.Config.Speech.Language)
	require.Equal(t, "advanced", loaded.Config.Passages.Level)
	require.Equal(t, "debug", loaded.Config.Log.Level)
	require.Equal(t, 10, loaded.Config.Log.MaxSizeMB)
	require.Equal(t, 3, loaded.Config.Log.MaxBackups)
	require.True(t, loaded.Config.Preview.Enable)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("RECITE_ENDPOINT_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("RECITE_SPEECH_ENABLE", "false")
	t.Setenv("RECITE_LOG_MAX_BACKUPS", "0")

	loaded, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080", loaded.Config.Endpoint.BaseURL)
	require.False(t, loaded.Config.Speech.Enable)
	require.Zero(t, loaded.Config.Log.MaxBackups)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{name: "bad log level", contents: "[log]\nlevel = \"loud\"\n", wantErr: "log.level must be one of"},
		{name: "non http endpoint", contents: "[endpoint]\nbase_url = \"ftp://example.com\"\n", wantErr: "http or https"},
		{name: "bad toml", contents: "[log\n", wantErr: "parse config"},
		{name: "bad quote in command", contents: "[speech]\ncommand = \"say \\\"oops\"\n", wantErr: "unterminated quote"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.contents), 0o600))

			_, err := Load(path)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
