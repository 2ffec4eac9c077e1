package capture

import (
	"time"
)

const (
	// MIMEType identifies raw 16kHz mono little-endian s16 PCM.
	MIMEType = "audio/L16; rate=16000; channels=1"
	// Extension is the filename suffix used for uploaded artifacts.
	Extension = "pcm"

	SampleRate = 16000
	Channels   = 1
)

// Artifact is the finalized recording built once when a session stops.
type Artifact struct {
	data      []byte
	mimeType  string
	duration  time.Duration
	sessionID string
}

// NewArtifact copies data into an immutable artifact.
func NewArtifact(data []byte, duration time.Duration) Artifact {
	if duration < 0 {
		duration = 0
	}
	return Artifact{
		data:     append([]byte(nil), data...),
		mimeType: MIMEType,
		duration: duration,
	}
}

// Data returns a copy of the recorded bytes.
func (a Artifact) Data() []byte {
	return append([]byte(nil), a.data...)
}

// Size returns the recorded byte count.
func (a Artifact) Size() int {
	return len(a.data)
}

// MIMEType returns the fixed content type of the recording.
func (a Artifact) MIMEType() string {
	if a.mimeType == "" {
		return MIMEType
	}
	return a.mimeType
}

// Duration returns the elapsed capture time.
func (a Artifact) Duration() time.Duration {
	return a.duration
}

// DurationSeconds returns the elapsed capture time in seconds.
func (a Artifact) DurationSeconds() float64 {
	return a.duration.Seconds()
}

// SessionID returns the capture session that produced the artifact.
func (a Artifact) SessionID() string {
	return a.sessionID
}
