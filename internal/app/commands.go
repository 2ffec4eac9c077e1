package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbright/recite/internal/audio"
	"github.com/rbright/recite/internal/cli"
	"github.com/rbright/recite/internal/config"
	"github.com/rbright/recite/internal/passage"
	"github.com/rbright/recite/internal/speech"
)

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s %s\n", defaultMark, device.String())
	}
	return 0
}

func (r Runner) commandPassages(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	list, err := passage.NewClient(cfg.Endpoint.BaseURL, logger).List(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	level := strings.TrimSpace(parsed.Level)
	shown := 0
	for _, p := range list {
		if level != "" && !strings.EqualFold(p.Level, level) {
			continue
		}
		levelText := p.Level
		if levelText == "" {
			levelText = "-"
		}
		fmt.Fprintf(r.Stdout, "%s\t%s\t%s\n", p.ID, levelText, p.Text)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(r.Stderr, "error: no passages available")
		return 1
	}
	return 0
}

func (r Runner) commandSpeak(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	if !cfg.Speech.Enable {
		fmt.Fprintf(r.Stderr, "error: %v\n", speech.ErrDisabled)
		return 1
	}

	text := firstNonEmpty(parsed.Payload(), parsed.Text, passage.DefaultText)
	speaker := speech.NewSpeaker(cfg.Speech.Command.Argv, cfg.Speech.Language, logger)
	if err := speaker.Speak(ctx, text); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
