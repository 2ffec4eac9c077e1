// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/rbright/recite/internal/pipeline"
	"github.com/rbright/recite/internal/session"
	"github.com/rbright/recite/internal/speech"
)

// Interrupt payloads posted into the event loop from other goroutines.
type (
	stateChanged  struct{}
	statusChanged struct{ message string }
	passageLoaded struct {
		text string
		err  error
	}
	quitRequested struct{}
)

// App runs the recite screen on top of one pipeline.
type App struct {
	screen   tcell.Screen
	pipeline *pipeline.Pipeline
	logger   *slog.Logger

	model  Model
	onDraw func([]Line)

	// latest is the newest controller snapshot. The event loop copies it
	// into model, so a dropped stateChanged nudge only delays the redraw.
	mu     sync.Mutex
	latest session.State
	fresh  bool
}

// New constructs an app. A nil screen uses the real terminal.
func New(screen tcell.Screen, p *pipeline.Pipeline, logger *slog.Logger) *App {
	return &App{
		screen:   screen,
		pipeline: p,
		logger:   logger,
	}
}

// Run blocks until the user quits or ctx is cancelled.
// fetchPassage loads a passage from the service on startup.
func (a *App) Run(ctx context.Context, fetchPassage bool) error {
	if a.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		a.screen = screen
	}
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer a.screen.Fini()

	ctrl := a.pipeline.Controller
	defer ctrl.Close()

	initial := ctrl.State()
	a.model = Model{State: initial, Text: initial.Text}
	unsubscribe := ctrl.Subscribe(func(s session.State) {
		a.mu.Lock()
		a.latest, a.fresh = s, true
		a.mu.Unlock()
		a.post(stateChanged{})
	})
	defer unsubscribe()

	stop := context.AfterFunc(ctx, func() { a.post(quitRequested{}) })
	defer stop()

	if fetchPassage {
		a.nextPassage(ctx)
	}

	a.draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch tev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.dispatch(ctx, a.model.HandleKey(tev.Key(), tev.Rune())) {
				return nil
			}
		case *tcell.EventInterrupt:
			if a.apply(tev.Data()) {
				return nil
			}
		}
		a.syncState()
		a.draw()
	}
}

// syncState folds the newest controller snapshot into the model.
func (a *App) syncState() {
	a.mu.Lock()
	latest, fresh := a.latest, a.fresh
	a.fresh = false
	a.mu.Unlock()
	if fresh {
		a.model.State = latest
		a.model.Text = latest.Text
	}
}

// dispatch performs action and reports whether the app should exit.
func (a *App) dispatch(ctx context.Context, action Action) bool {
	ctrl := a.pipeline.Controller
	switch action {
	case ActionQuit:
		return true
	case ActionToggle:
		go func() {
			if err := ctrl.Toggle(ctx); err != nil && !errors.Is(err, session.ErrBusy) {
				a.logDebug("toggle rejected", "error", err.Error())
			}
		}()
	case ActionNextPassage:
		a.nextPassage(ctx)
	case ActionSpeak:
		a.model.Status = "Speaking passage..."
		go func() {
			err := a.pipeline.Speak(ctx)
			switch {
			case errors.Is(err, speech.ErrDisabled):
				a.post(statusChanged{message: "Speech is disabled in the config"})
			case err != nil:
				a.post(statusChanged{message: err.Error()})
			default:
				a.post(statusChanged{})
			}
		}()
	case ActionPlayPreview:
		if err := a.pipeline.OpenPreview(); err != nil {
			a.model.Status = err.Error()
		} else {
			a.model.Status = "Playing " + a.pipeline.LastPreview()
		}
	case ActionCommitText:
		ctrl.SetTargetText(a.model.Text)
	}
	return false
}

// apply folds one interrupt payload into the model.
func (a *App) apply(data any) bool {
	switch msg := data.(type) {
	case stateChanged:
	case statusChanged:
		a.model.Status = msg.message
	case passageLoaded:
		if msg.err != nil {
			a.model.Status = "Could not fetch a passage: " + msg.err.Error()
			return false
		}
		a.model.Text = msg.text
		a.model.Status = ""
	case quitRequested:
		return true
	}
	return false
}

func (a *App) nextPassage(ctx context.Context) {
	a.model.Status = "Fetching passage..."
	go func() {
		picked, err := a.pipeline.NextPassage(ctx, nil)
		a.post(passageLoaded{text: picked.Text, err: err})
	}()
}

func (a *App) post(data any) {
	if err := a.screen.PostEvent(tcell.NewEventInterrupt(data)); err != nil {
		a.logDebug("dropped ui event", "error", err.Error())
	}
}

func (a *App) draw() {
	a.screen.Clear()
	width, height := a.screen.Size()
	lines := a.model.Layout(width)
	if a.onDraw != nil {
		a.onDraw(lines)
	}
	for y, line := range lines {
		if y >= height {
			break
		}
		x := 0
		for _, r := range line.Text {
			if x >= width {
				break
			}
			a.screen.SetContent(x, y, r, nil, line.Style)
			x++
		}
	}
	a.screen.Show()
}

func (a *App) logDebug(msg string, args ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Debug(msg, args...)
}
