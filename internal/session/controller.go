// Package session sequences capture, submission and UI state for one recorder.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rbright/recite/internal/capture"
	"github.com/rbright/recite/internal/fsm"
	"github.com/rbright/recite/internal/ipc"
	"github.com/rbright/recite/internal/scoring"
)

// Recorder is the capture surface the controller drives.
type Recorder interface {
	Start(context.Context) error
	Stop() (capture.Artifact, bool)
	Abort()
	Active() bool
}

// Submitter uploads one finished recording.
type Submitter interface {
	Submit(context.Context, scoring.Request) (scoring.Result, error)
}

// SubmitFunc adapts a function to the Submitter interface.
type SubmitFunc func(context.Context, scoring.Request) (scoring.Result, error)

func (f SubmitFunc) Submit(ctx context.Context, req scoring.Request) (scoring.Result, error) {
	return f(ctx, req)
}

// Controller owns the UI state and the recorder.
type Controller struct {
	logger    *slog.Logger
	recorder  Recorder
	submitter Submitter

	mu       sync.Mutex
	state    State
	starting bool
	closed   bool
	text     string
	last     capture.Artifact
	hasLast  bool
	changed  chan struct{}
	subs     map[int]func(State)
	nextSub  int
	onStop   func(capture.Artifact)
	inflight sync.WaitGroup

	notifyMu sync.Mutex
}

// NewController constructs an idle controller.
func NewController(logger *slog.Logger, recorder Recorder, submitter Submitter) *Controller {
	return &Controller{
		logger:    logger,
		recorder:  recorder,
		submitter: submitter,
		state:     idleState(),
		changed:   make(chan struct{}),
		subs:      make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	state := c.state
	state.Text = c.text
	return state
}

// SetTargetText replaces the passage that the next stop will submit.
// Subscribers are notified when the text changes.
func (c *Controller) SetTargetText(text string) {
	c.mu.Lock()
	if c.text == text {
		c.mu.Unlock()
		return
	}
	c.text = text
	c.mu.Unlock()
	c.notify()
}

// OnStopped registers fn to receive each artifact synchronously inside Stop,
// before the submission starts. fn must not call back into the controller.
func (c *Controller) OnStopped(fn func(capture.Artifact)) {
	c.mu.Lock()
	c.onStop = fn
	c.mu.Unlock()
}

// TargetText returns the current passage.
func (c *Controller) TargetText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// LastArtifact returns the most recently stopped recording.
func (c *Controller) LastArtifact() (capture.Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.hasLast
}

// Subscribe registers fn for state changes and returns its unsubscribe func.
// fn runs on the goroutine that changed the state and must not call Start,
// Stop or Close.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Await blocks until no capture or submission is in flight.
func (c *Controller) Await(ctx context.Context) (State, error) {
	for {
		c.mu.Lock()
		state, changed := c.snapshotLocked(), c.changed
		c.mu.Unlock()

		if !state.Busy() {
			return state, nil
		}
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		case <-changed:
		}
	}
}

// Wait blocks until the in-flight submission, if any, has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Start acquires the microphone and enters recording.
// A previous result or failure message is cleared.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.starting || c.state.Busy():
		c.mu.Unlock()
		return ErrBusy
	}
	if _, err := fsm.Transition(c.state.Phase, fsm.EventStart); err != nil {
		c.mu.Unlock()
		return err
	}
	c.starting = true
	c.mu.Unlock()

	err := c.recorder.Start(ctx)

	c.mu.Lock()
	c.starting = false
	if err != nil {
		c.setLocked(fsm.EventFail, failedState(Describe(err)))
		c.mu.Unlock()
		c.log(slog.LevelWarn, "recording start failed", "error", err.Error())
		c.notify()
		return fmt.Errorf("start recording: %w", err)
	}
	if c.closed {
		c.mu.Unlock()
		c.recorder.Abort()
		return ErrClosed
	}
	c.setLocked(fsm.EventStart, recordingState())
	c.mu.Unlock()

	c.log(slog.LevelInfo, "recording started")
	c.notify()
	return nil
}

// Stop ends the recording, moves to processing and submits in the background.
// It returns the artifact for local preview, or false when nothing was recording.
func (c *Controller) Stop(ctx context.Context) (capture.Artifact, bool) {
	c.mu.Lock()
	if c.state.Phase != fsm.StateRecording {
		c.mu.Unlock()
		return capture.Artifact{}, false
	}

	artifact, ok := c.recorder.Stop()
	if !ok {
		c.setLocked(fsm.EventAbort, idleState())
		c.mu.Unlock()
		c.log(slog.LevelWarn, "recorder had no session to stop")
		c.notify()
		return capture.Artifact{}, false
	}

	c.setLocked(fsm.EventStop, processingState())
	c.last, c.hasLast = artifact, true
	req := scoring.Request{Artifact: artifact, TargetText: c.text}
	onStop := c.onStop
	c.inflight.Add(1)
	c.mu.Unlock()

	if onStop != nil {
		onStop(artifact)
	}

	c.log(slog.LevelInfo, "recording stopped",
		"session", artifact.SessionID(),
		"bytes", artifact.Size(),
		"duration_seconds", artifact.DurationSeconds(),
	)
	c.notify()

	go c.submit(context.WithoutCancel(ctx), req)
	return artifact, true
}

// Toggle starts when idle and stops when recording.
func (c *Controller) Toggle(ctx context.Context) error {
	if c.State().Phase == fsm.StateRecording {
		if _, ok := c.Stop(ctx); !ok {
			return ErrBusy
		}
		return nil
	}
	return c.Start(ctx)
}

// Close aborts an active recording and rejects further starts.
// An in-flight submission still completes.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	recording := c.state.Phase == fsm.StateRecording
	if recording {
		c.recorder.Abort()
		c.setLocked(fsm.EventAbort, idleState())
	}
	c.mu.Unlock()

	if recording {
		c.log(slog.LevelInfo, "recording aborted")
		c.notify()
	}
}

// submit runs one upload. The deferred finalizer leaves processing on every exit path.
func (c *Controller) submit(ctx context.Context, req scoring.Request) {
	defer c.inflight.Done()

	outcome := failedState("Scoring ended unexpectedly.")
	defer func() {
		if r := recover(); r != nil {
			c.log(slog.LevelError, "submission panicked", "panic", fmt.Sprint(r))
		}
		c.finish(outcome)
	}()

	if c.submitter == nil {
		outcome = failedState("No scoring service is configured.")
		return
	}

	result, err := c.submitter.Submit(ctx, req)
	if err != nil {
		c.log(slog.LevelWarn, "submission failed", "session", req.Artifact.SessionID(), "error", err.Error())
		outcome = failedState(Describe(err))
		return
	}
	outcome = succeededState(result)
}

func (c *Controller) finish(next State) {
	c.mu.Lock()
	if c.state.Phase != fsm.StateProcessing {
		c.mu.Unlock()
		return
	}
	event := fsm.EventScored
	if next.Phase == fsm.StateFailed {
		event = fsm.EventFail
	}
	c.setLocked(event, next)
	c.mu.Unlock()
	c.notify()
}

// setLocked applies event and stores next. Callers hold c.mu.
func (c *Controller) setLocked(event fsm.Event, next State) {
	phase, err := fsm.Transition(c.state.Phase, event)
	if err != nil {
		c.log(slog.LevelError, "state transition rejected", "error", err.Error())
		return
	}
	next.Phase = phase
	c.state = next
	close(c.changed)
	c.changed = make(chan struct{})
}

// notify delivers the latest state to every subscriber, serialized so the
// final delivery always reflects the current state.
func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	state := c.snapshotLocked()
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func (c *Controller) log(level slog.Level, msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Log(context.Background(), level, msg, args...)
}

// Handle serves IPC commands for the owning process.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		state := c.State()
		msg := state.Message
		if msg == "" {
			msg = "status"
		}
		return ipc.Response{OK: true, State: string(state.Phase), Message: msg}
	case ipc.CommandToggle:
		if err := c.Toggle(ctx); err != nil {
			return c.errorResponse(err)
		}
		return ipc.Response{OK: true, State: string(c.State().Phase), Message: "toggled"}
	case ipc.CommandStop:
		return c.requestStop(ctx)
	case ipc.CommandText:
		text := strings.TrimSpace(req.Text)
		if text == "" {
			return ipc.Response{OK: false, State: string(c.State().Phase), Error: "text is empty"}
		}
		c.SetTargetText(text)
		return ipc.Response{OK: true, State: string(c.State().Phase), Message: "text updated"}
	default:
		return ipc.Response{OK: false, State: string(c.State().Phase), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (c *Controller) requestStop(ctx context.Context) ipc.Response {
	state := c.State()
	if state.Phase == fsm.StateProcessing {
		return ipc.Response{OK: false, State: string(state.Phase), Error: "already processing"}
	}
	if _, ok := c.Stop(ctx); !ok {
		return ipc.Response{OK: false, State: string(state.Phase), Error: fmt.Sprintf("cannot stop from state %s", state.Phase)}
	}
	return ipc.Response{OK: true, State: string(c.State().Phase), Message: "stop requested"}
}

func (c *Controller) errorResponse(err error) ipc.Response {
	if errors.Is(err, ErrBusy) {
		return ipc.Response{OK: false, State: string(c.State().Phase), Error: "already processing"}
	}
	return ipc.Response{OK: false, State: string(c.State().Phase), Error: Describe(err)}
}
