package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// transportError marks a request that never produced an HTTP response.
type transportError struct {
	cause error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("no response from upstream: %v", e.cause)
}

func (e *transportError) Unwrap() error { return e.cause }

// statusError carries a non-2xx response status and a bounded body snippet.
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("upstream status %d: %s", e.status, msg)
	}
	return fmt.Sprintf("upstream status %d", e.status)
}

// Message extracts a human-readable message from the error body when the
// upstream returned a JSON envelope, falling back to the raw snippet.
func (e *statusError) Message() string {
	if len(e.body) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(e.body))
}
