package scoring

import "fmt"

// ServerError is a non-2xx response from the scoring service.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scoring service returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("scoring service returned HTTP %d: %s", e.Status, e.Body)
}

// TransportError is a failure before any response was received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("scoring request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
