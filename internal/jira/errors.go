package jira

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means base URL or credentials are missing. It is raised
// before any network call.
var ErrNotConfigured = errors.New("jira not configured")

// TransportError covers timeouts, connection failures and non-2xx answers
// from the tracker. StatusCode is zero when no HTTP response was received.
type TransportError struct {
	StatusCode int
	Timeout    bool
	Message    string
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return "jira request timed out"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("jira request failed: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("jira request failed: %s", e.Message)
}

// ValidationError reports required fields that resolved empty at submission
// time.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required fields not filled: %v", e.Fields)
}
