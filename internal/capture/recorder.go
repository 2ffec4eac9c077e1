// Package capture owns one microphone session at a time and packages it into an artifact.
package capture

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sink receives raw fragments from a device while a session is open.
type Sink func([]byte)

// Stream is an open device handle. Close releases the hardware.
type Stream interface {
	Close() error
}

// Device opens input streams that push fragments into a sink.
type Device interface {
	Open(ctx context.Context, sink Sink) (Stream, error)
}

// recordingSession is the state of one capture attempt.
type recordingSession struct {
	id        string
	startedAt time.Time
	chunks    [][]byte
	stream    Stream
	closed    bool
}

// Recorder is the capture controller. It holds at most one session.
type Recorder struct {
	device Device
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	session *recordingSession
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithClock overrides the time source used for session durations.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder constructs a recorder on top of device.
func NewRecorder(device Device, logger *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{device: device, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Active reports whether a session currently owns the device.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Start opens the device and begins a new session.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.session != nil {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	if r.device == nil {
		r.mu.Unlock()
		return ErrDeviceUnavailable
	}
	sess := &recordingSession{id: uuid.NewString()}
	// Reserve the slot so a concurrent Start cannot race the device open.
	r.session = sess
	r.mu.Unlock()

	stream, err := r.device.Open(ctx, func(fragment []byte) {
		r.append(sess, fragment)
	})

	r.mu.Lock()
	if err != nil {
		if r.session == sess {
			r.session = nil
		}
		r.mu.Unlock()
		return err
	}
	if sess.closed {
		// Stopped or aborted while the device was opening.
		r.mu.Unlock()
		r.release(sess.id, stream)
		return nil
	}
	sess.stream = stream
	sess.startedAt = r.now()
	r.mu.Unlock()

	r.logDebug("capture started", "session", sess.id)
	return nil
}

// Stop closes the active session, releases the device, and returns its artifact.
// It is a no-op returning false when nothing is recording.
func (r *Recorder) Stop() (Artifact, bool) {
	sess, ok := r.detach()
	if !ok {
		return Artifact{}, false
	}
	stoppedAt := r.now()
	r.release(sess.id, sess.stream)

	var duration time.Duration
	if !sess.startedAt.IsZero() {
		duration = stoppedAt.Sub(sess.startedAt)
	}

	artifact := NewArtifact(bytes.Join(sess.chunks, nil), duration)
	artifact.sessionID = sess.id
	r.logDebug("capture stopped",
		"session", sess.id,
		"bytes", artifact.Size(),
		"fragments", len(sess.chunks),
		"duration_ms", artifact.Duration().Milliseconds(),
	)
	return artifact, true
}

// Abort releases the device and discards any buffered fragments.
func (r *Recorder) Abort() {
	sess, ok := r.detach()
	if !ok {
		return
	}
	r.release(sess.id, sess.stream)
	r.logDebug("capture aborted", "session", sess.id, "fragments", len(sess.chunks))
}

// detach closes the active session to further fragments and clears the slot.
func (r *Recorder) detach() (*recordingSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := r.session
	if sess == nil {
		return nil, false
	}
	sess.closed = true
	r.session = nil
	return sess, true
}

// append stores one non-empty fragment while the session is open.
func (r *Recorder) append(sess *recordingSession, fragment []byte) {
	if len(fragment) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess.closed {
		return
	}
	sess.chunks = append(sess.chunks, append([]byte(nil), fragment...))
}

// release closes a device stream, logging failures instead of returning them.
func (r *Recorder) release(sessionID string, stream Stream) {
	if stream == nil {
		return
	}
	if err := stream.Close(); err != nil && r.logger != nil {
		r.logger.Warn("release audio device failed", "session", sessionID, "error", err.Error())
	}
}

func (r *Recorder) logDebug(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Debug(msg, args...)
}
