package session

import (
	"github.com/rbright/recite/internal/fsm"
	"github.com/rbright/recite/internal/scoring"
)

// State is the single UI-facing snapshot of the recording lifecycle.
// Result is only set when succeeded and Message only when failed.
// Text is the target text the next stop submits.
type State struct {
	Phase   fsm.State
	Result  *scoring.Result
	Message string
	Text    string
}

// Busy reports whether a capture or submission is in flight.
func (s State) Busy() bool {
	return s.Phase.Busy()
}

func idleState() State {
	return State{Phase: fsm.StateIdle}
}

func recordingState() State {
	return State{Phase: fsm.StateRecording}
}

func processingState() State {
	return State{Phase: fsm.StateProcessing}
}

func succeededState(result scoring.Result) State {
	return State{Phase: fsm.StateSucceeded, Result: &result}
}

func failedState(message string) State {
	return State{Phase: fsm.StateFailed, Message: message}
}
