package config

const defaultSpeechCommand = "espeak-ng -v {lang} --stdin"

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Endpoint: EndpointConfig{BaseURL: "http://localhost:3000"},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Speech: SpeechConfig{
			Enable:   true,
			Command:  builtinCommand(defaultSpeechCommand),
			Language: "en-US",
		},
		Preview: PreviewConfig{Enable: true},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// defaultValues is Default flattened into viper keys.
func defaultValues() map[string]any {
	cfg := Default()
	return map[string]any{
		"endpoint.base_url": cfg.Endpoint.BaseURL,
		"audio.input":       cfg.Audio.Input,
		"audio.fallback":    cfg.Audio.Fallback,
		"speech.enable":     cfg.Speech.Enable,
		"speech.command":    cfg.Speech.Command.Raw,
		"speech.language":   cfg.Speech.Language,
		"preview.enable":    cfg.Preview.Enable,
		"preview.dir":       cfg.Preview.Dir,
		"passages.level":    cfg.Passages.Level,
		"log.level":         cfg.Log.Level,
		"log.max_size_mb":   cfg.Log.MaxSizeMB,
		"log.max_backups":   cfg.Log.MaxBackups,
	}
}
