package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/recite/internal/cli"
	"github.com/rbright/recite/internal/config"
	"github.com/rbright/recite/internal/fsm"
	"github.com/rbright/recite/internal/ipc"
	"github.com/rbright/recite/internal/pipeline"
	"github.com/rbright/recite/internal/render"
	"github.com/rbright/recite/internal/session"
	"github.com/rbright/recite/internal/tui"
)

const passageFetchTimeout = 3 * time.Second

// commandToggle stops a running owner, or becomes a headless owner and records.
func (r Runner) commandToggle(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	if code, handled := r.forwardToggle(ctx, socketPath); handled {
		return code
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			if code, handled := r.forwardToggle(ctx, socketPath); handled {
				return code
			}
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer releaseSocket(listener, socketPath)

	p, err := r.newPipeline(ctx, cfg, parsed, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	ctrl := p.Controller

	final, err := serveOwner(ctx, listener, ctrl, func(runCtx context.Context) (session.State, error) {
		if err := ctrl.Start(runCtx); err != nil {
			return ctrl.State(), nil
		}
		fmt.Fprintln(r.Stdout, "recording; run `recite toggle` again to stop")
		state, err := ctrl.Await(runCtx)
		if err != nil {
			ctrl.Close()
			return ctrl.State(), nil
		}
		return state, nil
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", err)
		return 1
	}

	logSessionResult(logger, final, p.LastPreview())
	switch final.Phase {
	case fsm.StateSucceeded:
		fmt.Fprintln(r.Stdout, render.Build(*final.Result).String())
		if path := p.LastPreview(); path != "" {
			fmt.Fprintf(r.Stdout, "preview: %s\n", path)
		}
		return 0
	case fsm.StateFailed:
		fmt.Fprintf(r.Stderr, "error: %s\n", final.Message)
		return 1
	default:
		fmt.Fprintln(r.Stdout, "cancelled")
		return 0
	}
}

func (r Runner) forwardToggle(ctx context.Context, socketPath string) (int, bool) {
	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: ipc.CommandToggle})
	if !handled {
		return 0, false
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1, true
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0, true
}

// commandRun opens the terminal UI. It also owns the control socket when one is available.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	var listener net.Listener
	socketPath, err := ipc.RuntimeSocketPath()
	if err == nil {
		listener, err = ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		defer releaseSocket(listener, socketPath)
	} else {
		logger.Warn("control socket unavailable", "error", err.Error())
	}

	p, err := r.buildPipeline(cfg, parsed, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	app := tui.New(r.Screen, p, logger)
	fetch := strings.TrimSpace(parsed.Text) == ""
	run := func(runCtx context.Context) (session.State, error) {
		return p.Controller.State(), app.Run(runCtx, fetch)
	}

	var runErr error
	if listener != nil {
		_, runErr = serveOwner(ctx, listener, p.Controller, run)
	} else {
		_, runErr = run(ctx)
	}
	if runErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}

// serveOwner answers IPC commands on listener for as long as body runs.
func serveOwner(
	ctx context.Context,
	listener net.Listener,
	ctrl *session.Controller,
	body func(context.Context) (session.State, error),
) (session.State, error) {
	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()

	g, gctx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		return ipc.Serve(gctx, listener, ctrl)
	})

	var final session.State
	g.Go(func() error {
		defer stopServing()
		state, err := body(gctx)
		final = state
		return err
	})

	err := g.Wait()
	return final, err
}

// newPipeline builds the pipeline and sets the passage for a headless session.
func (r Runner) newPipeline(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) (*pipeline.Pipeline, error) {
	p, err := r.buildPipeline(cfg, parsed, logger)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(parsed.Text) != "" {
		return p, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, passageFetchTimeout)
	defer cancel()
	if _, err := p.NextPassage(fetchCtx, nil); err != nil {
		fmt.Fprintf(r.Stderr, "warning: using the sample passage: %v\n", err)
		logger.Warn("passage fetch failed", "error", err.Error())
	}
	fmt.Fprintf(r.Stdout, "passage: %s\n", p.Controller.TargetText())
	return p, nil
}

func (r Runner) buildPipeline(cfg config.Config, parsed cli.Parsed, logger *slog.Logger) (*pipeline.Pipeline, error) {
	p, err := pipeline.New(cfg, logger, r.PipelineOptions...)
	if err != nil {
		return nil, err
	}
	p.SetLevel(parsed.Level)
	if text := strings.TrimSpace(parsed.Text); text != "" {
		p.Controller.SetTargetText(text)
	}
	return p, nil
}

func releaseSocket(listener net.Listener, socketPath string) {
	_ = listener.Close()
	_ = os.Remove(socketPath)
}

func logSessionResult(logger *slog.Logger, state session.State, previewPath string) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", state.Phase,
		"preview", previewPath,
	}
	if state.Result != nil {
		report := render.Build(*state.Result)
		fields = append(fields, "score", report.Score, "words_per_minute", report.WordsPerMinute)
	}
	if state.Phase == fsm.StateFailed {
		logger.Error("session failed", append(fields, "error", state.Message)...)
		return
	}
	logger.Info("session complete", fields...)
}
