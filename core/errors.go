package core

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned when an orchestration request carries no
// message text.
var ErrEmptyMessage = errors.New("message must not be empty")

// AgentNotFoundError reports a request for an unregistered agent id. It is
// surfaced to callers, never retried.
type AgentNotFoundError struct {
	ID string
}

func (e *AgentNotFoundError) Error() string {
	return fmt.Sprintf("agent %q is not registered", e.ID)
}

// BackendError wraps a generative-backend failure with the provider that
// produced it.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsAgentNotFound reports whether err is an AgentNotFoundError.
func IsAgentNotFound(err error) bool {
	var notFound *AgentNotFoundError
	return errors.As(err, &notFound)
}
