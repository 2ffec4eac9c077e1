package capture

import "errors"

var (
	// ErrPermissionDenied indicates the audio server refused microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrDeviceUnavailable indicates no usable audio input could be opened.
	ErrDeviceUnavailable = errors.New("audio input device unavailable")
	// ErrAlreadyRecording rejects a second start while a session owns the device.
	ErrAlreadyRecording = errors.New("recording already in progress")
)
