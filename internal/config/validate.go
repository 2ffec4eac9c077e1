package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, fieldError(fieldErrs[0])
		}
		return nil, err
	}

	parsed, err := url.Parse(strings.TrimSpace(cfg.Endpoint.BaseURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("endpoint.base_url must be an http or https URL")
	}
	if cfg.Speech.Enable && len(cfg.Speech.Command.Argv) == 0 {
		return nil, fmt.Errorf("speech.command must not be empty when speech.enable=true")
	}

	var warnings []Warning
	if cfg.Speech.Enable && !strings.Contains(cfg.Speech.Command.Raw, "{lang}") {
		warnings = append(warnings, Warning{Message: "speech.command has no {lang} placeholder; speech.language is ignored"})
	}
	if strings.TrimSpace(cfg.Audio.Fallback) == "" {
		warnings = append(warnings, Warning{Message: "audio.fallback is empty; only audio.input will be tried"})
	}
	return warnings, nil
}

// fieldError names the failing key the way it appears in the config file.
func fieldError(fe validator.FieldError) error {
	key := configKey(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must not be empty", key)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", key, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Errorf("%s must be > %s", key, fe.Param())
	case "gte":
		return fmt.Errorf("%s must be >= %s", key, fe.Param())
	case "url":
		return fmt.Errorf("%s must be a valid URL", key)
	default:
		return fmt.Errorf("%s failed %s validation", key, fe.Tag())
	}
}

var configKeys = map[string]string{
	"Config.Endpoint.BaseURL": "endpoint.base_url",
	"Config.Audio.Input":      "audio.input",
	"Config.Speech.Language":  "speech.language",
	"Config.Log.Level":        "log.level",
	"Config.Log.MaxSizeMB":    "log.max_size_mb",
	"Config.Log.MaxBackups":   "log.max_backups",
}

func configKey(namespace string) string {
	if key, ok := configKeys[namespace]; ok {
		return key
	}
	return strings.ToLower(strings.TrimPrefix(namespace, "Config."))
}
