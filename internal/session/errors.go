package session

import (
	"errors"
	"strings"

	"github.com/rbright/recite/internal/capture"
	"github.com/rbright/recite/internal/scoring"
)

var (
	// ErrBusy rejects a start while a recording or submission is active.
	ErrBusy = errors.New("a recording is already in progress")
	// ErrClosed rejects work after the controller was closed.
	ErrClosed = errors.New("session closed")
)

// Describe turns err into the message shown in the failed state.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var serverErr *scoring.ServerError
	var transportErr *scoring.TransportError
	switch {
	case errors.Is(err, capture.ErrPermissionDenied):
		return "Microphone access was denied: " + err.Error()
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return "No microphone is available: " + err.Error()
	case errors.Is(err, ErrBusy), errors.Is(err, capture.ErrAlreadyRecording):
		return "A recording is already in progress."
	case errors.As(err, &serverErr):
		return serverErr.Error()
	case errors.As(err, &transportErr):
		return transportErr.Error()
	}

	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "Recording failed."
	}
	return msg
}
