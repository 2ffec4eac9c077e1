// Package doctor runs readiness diagnostics for config, tools, audio, and the scoring service.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/recite/internal/audio"
	"github.com/rbright/recite/internal/config"
	"github.com/rbright/recite/internal/passage"
	"github.com/rbright/recite/internal/speech"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment, config and runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{configCheck(cfg)}

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "runtime dir available for the control socket", "XDG_RUNTIME_DIR is empty; toggle/stop/status cannot reach a session"))

	if cfg.Config.Speech.Enable {
		speaker := speech.NewSpeaker(cfg.Config.Speech.Command.Argv, cfg.Config.Speech.Language, nil)
		checks = append(checks, checkCommand(speaker.Argv(), "speech.command"))
	}

	checks = append(checks, checkAudioSelection(ctx, cfg.Config))
	checks = append(checks, checkEndpoint(ctx, cfg.Config.Endpoint.BaseURL))

	return Report{Checks: checks}
}

func configCheck(cfg config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkEndpoint fetches the passage catalogue to prove the service answers.
func checkEndpoint(ctx context.Context, baseURL string) Check {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	list, err := passage.NewClient(baseURL, nil).List(ctx)
	if err != nil {
		return Check{Name: "endpoint", Pass: false, Message: err.Error()}
	}
	if len(list) == 0 {
		return Check{Name: "endpoint", Pass: false, Message: fmt.Sprintf("%s answered with no usable passages", baseURL)}
	}
	return Check{Name: "endpoint", Pass: true, Message: fmt.Sprintf("%s serves %d passages", baseURL, len(list))}
}
