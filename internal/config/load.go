package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. RECITE_ENDPOINT_BASE_URL.
const EnvPrefix = "RECITE"

// Loaded captures resolved config path, decoded values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, decodes, and validates the runtime configuration.
// Environment overrides apply whether or not the file exists.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	v := viper.New()
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	loaded := Loaded{Path: resolvedPath}
	if _, statErr := os.Stat(resolvedPath); statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, statErr)
		}
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
		})
	} else {
		v.SetConfigFile(resolvedPath)
		if err := v.ReadInConfig(); err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
		}
		loaded.Exists = true
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(commandDecodeHook)); err != nil {
		return Loaded{}, fmt.Errorf("decode config %q: %w", resolvedPath, err)
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Loaded{}, fmt.Errorf("invalid config %q: %w", resolvedPath, err)
	}
	loaded.Config = cfg
	loaded.Warnings = append(loaded.Warnings, warnings...)
	return loaded, nil
}

var commandConfigType = reflect.TypeOf(CommandConfig{})

// commandDecodeHook turns a command string into its parsed argv form.
var commandDecodeHook mapstructure.DecodeHookFunc = func(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != commandConfigType || from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	argv, err := splitCommand(raw)
	if err != nil {
		return nil, err
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}
