// Package pipeline wires configuration into the capture, scoring and session graph.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/rbright/recite/internal/audio"
	"github.com/rbright/recite/internal/capture"
	"github.com/rbright/recite/internal/config"
	"github.com/rbright/recite/internal/passage"
	"github.com/rbright/recite/internal/preview"
	"github.com/rbright/recite/internal/scoring"
	"github.com/rbright/recite/internal/session"
	"github.com/rbright/recite/internal/speech"
)

// Pipeline holds one fully wired controller and its collaborators.
type Pipeline struct {
	Controller *session.Controller
	Passages   *passage.Client
	Speaker    *speech.Speaker
	Previews   *preview.Store

	level  string
	logger *slog.Logger

	mu          sync.Mutex
	lastPreview string
}

type options struct {
	device    capture.Device
	submitter session.Submitter
}

// Option overrides one collaborator, mostly for tests.
type Option func(*options)

// WithDevice replaces the Pulse input device.
func WithDevice(device capture.Device) Option {
	return func(o *options) { o.device = device }
}

// WithSubmitter replaces the HTTP scoring client.
func WithSubmitter(submitter session.Submitter) Option {
	return func(o *options) { o.submitter = submitter }
}

// New builds the pipeline described by cfg.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	o := options{
		device: audio.PulseDevice{Input: cfg.Audio.Input, Fallback: cfg.Audio.Fallback, Logger: logger},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.submitter == nil {
		o.submitter = scoring.NewClient(cfg.Endpoint.BaseURL, logger)
	}

	p := &Pipeline{
		Passages: passage.NewClient(cfg.Endpoint.BaseURL, logger),
		level:    cfg.Passages.Level,
		logger:   logger,
	}
	if cfg.Speech.Enable {
		p.Speaker = speech.NewSpeaker(cfg.Speech.Command.Argv, cfg.Speech.Language, logger)
	}
	if cfg.Preview.Enable {
		store, err := preview.NewStore(cfg.Preview.Dir)
		if err != nil {
			return nil, fmt.Errorf("preview store: %w", err)
		}
		p.Previews = store
	}

	recorder := capture.NewRecorder(o.device, logger)
	p.Controller = session.NewController(logger, recorder, o.submitter)
	if p.Previews != nil {
		p.Controller.OnStopped(p.savePreview)
	}
	p.Controller.SetTargetText(passage.DefaultText)
	return p, nil
}

// SetLevel overrides the configured passage level.
func (p *Pipeline) SetLevel(level string) {
	if level = strings.TrimSpace(level); level != "" {
		p.level = level
	}
}

// NextPassage fetches the catalogue, picks one entry and makes it the target text.
func (p *Pipeline) NextPassage(ctx context.Context, rng *rand.Rand) (passage.Passage, error) {
	list, err := p.Passages.List(ctx)
	if err != nil {
		return passage.Passage{}, err
	}
	picked, err := passage.Pick(list, p.level, rng)
	if err != nil {
		return passage.Passage{}, err
	}
	p.Controller.SetTargetText(picked.Text)
	return picked, nil
}

// Speak reads the current target text aloud.
func (p *Pipeline) Speak(ctx context.Context) error {
	if p.Speaker == nil {
		return speech.ErrDisabled
	}
	return p.Speaker.Speak(ctx, p.Controller.TargetText())
}

// LastPreview returns the path of the newest saved preview.
func (p *Pipeline) LastPreview() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPreview
}

// OpenPreview plays the newest saved preview.
func (p *Pipeline) OpenPreview() error {
	if p.Previews == nil {
		return fmt.Errorf("previews are disabled")
	}
	return p.Previews.Open(p.LastPreview())
}

// savePreview writes the stopped artifact before its submission starts, so
// the newest preview is on disk once Stop returns whatever the scoring outcome.
func (p *Pipeline) savePreview(artifact capture.Artifact) {
	path, err := p.Previews.Save(artifact)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("preview not saved", "session", artifact.SessionID(), "error", err.Error())
		}
		return
	}
	p.mu.Lock()
	p.lastPreview = path
	p.mu.Unlock()
}
