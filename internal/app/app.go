// Package app dispatches parsed commands to the recite subsystems.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/rbright/recite/internal/cli"
	"github.com/rbright/recite/internal/config"
	"github.com/rbright/recite/internal/doctor"
	"github.com/rbright/recite/internal/logging"
	"github.com/rbright/recite/internal/pipeline"
	"github.com/rbright/recite/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Screen replaces the terminal used by the run command.
	Screen tcell.Screen
	// PipelineOptions are applied to every pipeline the runner builds.
	PipelineOptions []pipeline.Option
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(version.Name))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(version.Name))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(logging.Options{
		Level:      cfgLoaded.Config.Log.Level,
		MaxSizeMB:  cfgLoaded.Config.Log.MaxSizeMB,
		MaxBackups: cfgLoaded.Config.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandPassages:
		return r.commandPassages(ctx, cfgLoaded.Config, parsed, logger)
	case cli.CommandSpeak:
		return r.commandSpeak(ctx, cfgLoaded.Config, parsed, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, forwardRequest(parsed))
	case cli.CommandText:
		return r.forwardOrFail(ctx, forwardRequest(parsed))
	case cli.CommandToggle:
		return r.commandToggle(ctx, cfgLoaded.Config, parsed, logger)
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, parsed, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}
