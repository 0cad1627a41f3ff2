package interview

import (
	"errors"
	"fmt"

	"github.com/intervu-ai/intervu/internal/domain"
)

// Sentinel errors surfaced by session operations. Callers match them
// with errors.Is; wrapped details carry the offending state or cause.
var (
	// ErrInvalidState means an operation was attempted from a state that
	// does not accept it. Never retried internally.
	ErrInvalidState = errors.New("invalid session state")
	// ErrSessionNotFound means the session id is unknown to the registry.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyAnswer means the submitted transcript was blank after trimming.
	ErrEmptyAnswer = errors.New("empty answer")
	// ErrMissingContext means StartSession was called without resume text
	// or a job description.
	ErrMissingContext = errors.New("resume text and job description are required")
	// ErrContentServiceUnavailable wraps a failure of the external content
	// service. The session is left in its pre-call state so the same call
	// can be retried safely.
	ErrContentServiceUnavailable = errors.New("content service unavailable")
	// ErrTranscriptionFailed wraps a failure of the external transcription
	// service, with the same retry-safety guarantee.
	ErrTranscriptionFailed = errors.New("transcription failed")
)

func invalidState(op string, state domain.State) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidState, op, state)
}
