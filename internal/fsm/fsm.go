// Package fsm defines the recording lifecycle states and their legal transitions.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle       State = "idle"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

const (
	EventStart  Event = "start"
	EventStop   Event = "stop"
	EventAbort  Event = "abort"
	EventScored Event = "scored"
	EventFail   Event = "fail"
)

// Transition returns the state reached by applying event to current.
func Transition(current State, event Event) (State, error) {
	if !current.Known() {
		return current, fmt.Errorf("unknown state %q", current)
	}

	// fail is a start failure from a resting state or a submit failure from
	// processing. A held device is only left through stop or abort.
	switch current {
	case StateIdle, StateSucceeded, StateFailed:
		switch event {
		case EventStart:
			return StateRecording, nil
		case EventFail:
			return StateFailed, nil
		}
	case StateRecording:
		switch event {
		case EventStop:
			return StateProcessing, nil
		case EventAbort:
			return StateIdle, nil
		}
	case StateProcessing:
		switch event {
		case EventScored:
			return StateSucceeded, nil
		case EventFail:
			return StateFailed, nil
		}
	}
	return current, invalidTransition(current, event)
}

// Known reports whether s is one of the defined lifecycle states.
func (s State) Known() bool {
	switch s {
	case StateIdle, StateRecording, StateProcessing, StateSucceeded, StateFailed:
		return true
	default:
		return false
	}
}

// Busy reports whether a capture or submission currently owns the lifecycle.
func (s State) Busy() bool {
	return s == StateRecording || s == StateProcessing
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
