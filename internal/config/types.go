// Package config resolves, loads, validates and defaults recite configuration.
package config

// Config is the fully materialized runtime configuration.
type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	Passages PassagesConfig `mapstructure:"passages"`
	Log      LogConfig      `mapstructure:"log"`
}

// EndpointConfig locates the scoring service.
type EndpointConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string `mapstructure:"input" validate:"required"`
	Fallback string `mapstructure:"fallback"`
}

// SpeechConfig controls reading a passage aloud.
type SpeechConfig struct {
	Enable   bool          `mapstructure:"enable"`
	Command  CommandConfig `mapstructure:"command"`
	Language string        `mapstructure:"language" validate:"required"`
}

// PreviewConfig controls the local WAV copy of each recording.
type PreviewConfig struct {
	Enable bool   `mapstructure:"enable"`
	Dir    string `mapstructure:"dir"`
}

// PassagesConfig controls passage selection.
type PassagesConfig struct {
	Level string `mapstructure:"level"`
}

// LogConfig controls the JSON log file.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gt=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}
