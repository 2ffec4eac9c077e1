package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty endpoint", mutate: func(c *Config) { c.Endpoint.BaseURL = "" }, wantErr: "endpoint.base_url must not be empty"},
		{name: "relative endpoint", mutate: func(c *Config) { c.Endpoint.BaseURL = "localhost" }, wantErr: "endpoint.base_url"},
		{name: "empty input", mutate: func(c *Config) { c.Audio.Input = "" }, wantErr: "audio.input must not be empty"},
		{name: "empty language", mutate: func(c *Config) { c.Speech.Language = "" }, wantErr: "speech.language"},
		{name: "zero log size", mutate: func(c *Config) { c.Log.MaxSizeMB = 0 }, wantErr: "log.max_size_mb must be > 0"},
		{name: "negative backups", mutate: func(c *Config) { c.Log.MaxBackups = -1 }, wantErr: "log.max_backups must be >= 0"},
		{name: "speech without command", mutate: func(c *Config) { c.Speech.Command = CommandConfig{} }, wantErr: "speech.command"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := Default()
	cfg.Speech.Command = CommandConfig{Raw: "say", Argv: []string{"say"}}
	cfg.Audio.Fallback = ""

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	require.Contains(t, warnings[0].Message, "{lang}")
	require.Contains(t, warnings[1].Message, "audio.fallback")
}

func TestValidateAllowsDisabledSpeechWithoutCommand(t *testing.T) {
	cfg := Default()
	cfg.Speech.Enable = false
	cfg.Speech.Command = CommandConfig{}

	_, err := Validate(cfg)
	require.NoError(t, err)
}
