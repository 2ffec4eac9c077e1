// Package speech reads passages aloud through an external text-to-speech command.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// LangPlaceholder is replaced by the configured language tag in each argument.
const LangPlaceholder = "{lang}"

// ErrDisabled is returned when speech playback is turned off.
var ErrDisabled = errors.New("speech playback disabled")

// Speaker runs one command per utterance with the text on stdin.
type Speaker struct {
	argv     []string
	language string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSpeaker constructs a speaker. A nil argv yields a disabled speaker.
func NewSpeaker(argv []string, language string, logger *slog.Logger) *Speaker {
	return &Speaker{
		argv:     append([]string(nil), argv...),
		language: strings.TrimSpace(language),
		timeout:  2 * time.Minute,
		logger:   logger,
	}
}

// Argv returns the command with the language placeholder expanded.
func (s *Speaker) Argv() []string {
	out := make([]string, len(s.argv))
	for i, arg := range s.argv {
		out[i] = strings.ReplaceAll(arg, LangPlaceholder, s.language)
	}
	return out
}

// Speak blocks until the command has read text aloud.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if len(s.argv) == 0 {
		return ErrDisabled
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	speakCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	argv := s.Argv()
	if err := runCommandWithInput(speakCtx, argv, text); err != nil {
		if s.logger != nil {
			s.logger.Warn("speech command failed", "command", argv[0], "error", err.Error())
		}
		return fmt.Errorf("speak passage: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("speech finished", "command", argv[0], "chars", len(text), "elapsed_ms", time.Since(started).Milliseconds())
	}
	return nil
}

// runCommandWithInput executes argv and writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("run %s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
