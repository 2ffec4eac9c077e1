// Package ipc carries control commands to the process that owns a recording.
package ipc

// Commands understood by a session owner.
const (
	CommandStatus = "status"
	CommandToggle = "toggle"
	CommandStop   = "stop"
	CommandText   = "text"
)

// Request is one newline-delimited JSON command.
type Request struct {
	Command string `json:"command"`
	Text    string `json:"text,omitempty"`
}

// Response is the owner's single reply to a Request.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
